// Package logging provides structured logging for the resdata CLI using slog.
//
// Path commands print their answer on stdout and log on stderr, so the
// default level is Warn; -v raises it. Both text and JSON formats are
// supported, and --log-file tees JSON records into a file via [MultiHandler].
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("loaded configuration", "data_root", cfg.DataRoot)
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	r := datapaths.New(root, datapaths.WithLogger(logging.ForTest(t)))
package logging
