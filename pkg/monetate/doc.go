/*
Package monetate is a client for the Monetate data API.

Authentication is two-staged. The client signs a short-lived RS256 JWT
asserting {username, iat} with the account's private key and exchanges it at
the auth endpoint for a bearer token. The bearer token is cached and reused
until fewer than 30 seconds of its lifetime remain; every data call makes sure
of that first and refreshes when needed:

	c, err := monetate.New("api-user", privateKeyPEM)
	if err != nil {
		// errors.Is(err, connector.ErrValidation)
	}

	schemas, err := c.GetSchemas(ctx)
	rows, err := c.GetRecord(ctx, "next buy reco", "MCMID|0001")
	rows, err = c.PostRecords(ctx, "next buy reco", []monetate.Record{{"cookie_id": "MCMID|0001"}})

Every failure other than input validation is a *connector.Error. Token
refresh failures additionally match connector.ErrAuth.

A Client is safe for concurrent use; concurrent calls that find the token
stale share one refresh.
*/
package monetate
