// Package logger builds structured slog loggers with a small set of options
// and consistent attribute names.
//
// New returns a *slog.Logger writing JSON (default) or text. Options select
// the level, output and static attributes, and register ContextExtractor
// callbacks; the returned logger runs every extractor against the context of
// each record, which is how request ids end up on session events.
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "sessiond"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.DebugContext(ctx, "session created", logger.SessionID(id))
//
// Attribute helpers such as SessionID, Error and RequestID return an empty slog.Attr
// for empty input, so they can be passed unconditionally.
package logger
