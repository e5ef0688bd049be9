// Package log provides the logging abstraction used by recbatch components.
//
// Library code logs through the [Logger] interface so that embedding
// programs can plug in their own logging. A zerolog adapter and a no-op
// logger are provided:
//
//	logger := log.NewZerolog(zerolog.New(os.Stderr))
//	logger.Info("batch sent", log.Int("records", 500))
//
//	quiet := log.Noop()
package log
