// Package password provides argon2id password hashing in PHC string
// format. It is the default hashing backend for authcore's signup and
// login flows; integrations with existing credential stores can bypass it
// entirely by verifying passwords inside their own UserProvider.
package password
