// Package authstore connects a session.Manager to the auth API.
//
// A Store logs in, registers and logs out through an authapi client and
// persists the issued sessions. It subscribes to the manager's refresh-needed
// events and exchanges the refresh token for a new access token; a rejected
// refresh token clears the session. State returns the last published
// session.Summary.
//
//	client, _ := authapi.NewClient(baseURL, authapi.WithTokenSource(mgr.TokenSource(ctx)))
//	store := authstore.New(mgr, client)
//	defer store.Close()
//
//	summary, err := store.Restore(ctx)
//	if !summary.IsAuthenticated {
//		summary, err = store.Login(ctx, authapi.Credentials{Email: email, Password: password}, true)
//	}
package authstore
