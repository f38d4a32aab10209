// Package auth verifies bearer tokens and issues new ones. Access and
// refresh tokens are HS256 JWTs carrying the user id, role and token type;
// passwords are hashed with bcrypt.
package auth
