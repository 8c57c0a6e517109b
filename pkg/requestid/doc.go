// Package requestid correlates outgoing API calls with log records.
//
// Ensure attaches a request id (a UUIDv4 string) to a context unless it
// already carries a valid one. Transport copies that id into the
// X-Request-ID header of every outgoing request, generating one when the
// context has none, so retries of one logical call share an id.
// LoggerExtractor adds the id to slog records through logger.WithContextExtractors.
//
//	client := requestid.Wrap(http.DefaultClient)
//
//	ctx, id := requestid.Ensure(ctx)
//	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
//	resp, err := client.Do(req) // sent with X-Request-ID: id
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	log.InfoContext(ctx, "refreshing") // carries request_id
//
// Ids supplied through the context are validated: at most 128 characters of
// letters, digits, '-' and '_'. Invalid ids are replaced.
package requestid
