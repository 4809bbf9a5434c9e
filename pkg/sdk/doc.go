// Package curator provides a Go client for the Curator image and document search API.
//
// A search is one synchronous POST to curator/collections/{id}/search. Ranking,
// filtering and aggregation happen server-side; the client only builds the request
// and decodes the response.
//
//	client, _ := curator.New(
//	    curator.WithBaseURL("https://api.clarifai.com/v1"),
//	    curator.WithAccessToken(os.Getenv("CURATOR_ACCESS_TOKEN")),
//	)
//	resp, err := client.Search(ctx, "photos", curator.Query{
//	    Tags:    []string{"dog"},
//	    PerPage: 10,
//	}, &curator.SearchOptions{TopTags: 10, ScoringMode: curator.ScoringDot})
//
// Errors come through two channels. Transport failures and non-2xx replies are
// returned as errors (see ErrTransport and APIError). Requests the server rejects,
// such as an invalid image URL or an unknown document ID, come back as a response
// whose Status.Status is "ERROR" with a nil error.
package curator
