// Package qualtrics provides a client for the Qualtrics v3 REST API.
//
// Every response from the platform is wrapped in an envelope whose
// meta.httpStatus is "200 - OK" on success. The client decodes that
// envelope for every call, follows nextPage cursors for listings and runs
// the asynchronous response export job from creation to a decoded table.
//
// # Usage
//
//	client, err := qualtrics.New(qualtrics.Config{
//		DataCenter: "ca1",
//		APIToken:   token,
//	}, qualtrics.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
//	defer cancel()
//
//	responses, err := client.ExportResponses(ctx, qualtrics.ExportRequest{
//		SurveyID:     "SV_abc123",
//		PollInterval: 5 * time.Second,
//	})
//
// # Error Handling
//
// The package distinguishes several kinds of failure:
//
//   - ProtocolError: the response did not follow the envelope convention
//   - APIError: a well-formed envelope reporting a failure, with the envelope attached
//   - PartialResultError: a listing stopped part way; the elements read so far are returned with it
//   - ValidationError: caller input rejected before any request was sent
//   - TimeoutError: the export context expired while polling (matches ErrTimeout)
//
// API errors include helper methods for classification:
//
//	var apiErr *qualtrics.APIError
//	if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
//		// Handle auth failure
//	}
package qualtrics
