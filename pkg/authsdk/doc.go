/*
Package authsdk is the Go client for the SemBuddy authentication service.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints and creates Sessions:

	client := authsdk.NewSDKClient("https://auth.example.com")

	user, err := client.Register(ctx, authsdk.RegisterRequest{
		Identifier: "alice",
		Password:   "p@ss",
		Role:       "student",
	})

	session, err := client.AuthenticateWithPassword(ctx, "alice", "p@ss")

A Session carries the tokens and refreshes the access token shortly before
it expires, so callers never refresh by hand:

	me, err := session.Me(ctx)
	me, err = session.UpdateProfile(ctx, "Alice L.")

	// Admin only.
	dash, err := session.AdminDashboard(ctx)
	user, err = session.UpdateRole(ctx, "bob", "staff")

	err = session.Logout(ctx)

Sessions are safe for concurrent use.

# Errors

Failed calls return an *APIError carrying the HTTP status and the
service's error code. Match the predefined values with errors.Is:

	_, err := session.AdminDashboard(ctx)
	switch {
	case errors.Is(err, authsdk.ErrAccessDenied):
		// signed in, but not an admin
	case errors.Is(err, authsdk.ErrInvalidToken):
		// token expired or revoked and could not be refreshed
	}

Login failures are always ErrInvalidCredentials; the service does not say
whether the identifier exists.

# Bootstrapping the first admin

Admins cannot self-register. The operator sets BOOTSTRAP_TOKEN on the
service and registers the first admin with it:

	admin, err := client.RegisterWithBootstrap(ctx, bootstrapToken, authsdk.RegisterRequest{
		Identifier: "root",
		Password:   "correct horse battery staple",
		Role:       "admin",
	})

After that, admins register further admins with Session.Register.
*/
package authsdk
