// Package authapi is a client for the auth REST API that issues sessions.
//
// Login, Register and Refresh return a TokenResponse whose fields map onto
// session.SaveParams:
//
//	resp, err := client.Login(ctx, authapi.Credentials{Email: email, Password: password})
//	if err != nil {
//		return err
//	}
//	err = mgr.SaveAuthData(ctx, session.SaveParams{
//		Token:        resp.Token,
//		RefreshToken: resp.RefreshToken,
//		ExpiresIn:    resp.Lifetime(),
//		User:         resp.User,
//	})
//
// Logout is an authenticated call. The bearer token comes from the
// oauth2.TokenSource set with WithTokenSource, usually
// session.Manager.TokenSource.
//
// Every non-2xx response is returned as *APIError; 401 responses also match
// ErrUnauthorized. Network failures, 5xx, 408, 425 and 429 responses are
// retried with exponential backoff.
package authapi
