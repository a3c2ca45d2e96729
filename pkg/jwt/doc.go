// Package jwt provides JSON Web Token utilities for the GameKeeper API.
//
// The jwt package wraps github.com/golang-jwt/jwt/v5 with RS256 key
// handling, the claim set GameKeeper tokens carry, and stable sentinel
// errors for the middleware to map.
//
// # Token Generation
//
// Sign tokens for authenticated members:
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "keys/jwt.pem",
//	    PublicKeyPath:  "keys/jwt.pub",
//	    Issuer:         "gamekeeper.ludobar.club",
//	    ExpirationMins: 1440,
//	})
//
//	token, err := service.Sign(jwt.Claims{
//	    UserID:   user.ID,
//	    Username: user.Username,
//	    Roles:    roles,
//	})
//
// # Token Validation
//
// Validate and extract claims:
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // ErrTokenExpired, ErrInvalidSignature, ErrInvalidToken, ...
//	}
//	userID := claims.UserID
//
// # Claims
//
// Claims embed the registered JWT claims and add GameKeeper's custom ones:
//
//	type Claims struct {
//	    jwt.RegisteredClaims          // iss, exp, nbf, iat, ...
//	    UserID   string               // account ID
//	    Username string
//	    Roles    []string             // role grants at signing time
//	}
//
// # Keys
//
// Keys are RSA, loaded from PEM files. GenerateKeyPair writes a fresh pair
// for first-boot setups and the admin-token tool.
package jwt
