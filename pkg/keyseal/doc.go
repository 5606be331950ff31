// Package keyseal encrypts freshly generated account keys for a recipient so
// they never travel in the clear.
//
// Seal performs an ephemeral secp256k1 ECDH with the recipient's public key,
// hashes the shared secret with SHA-256 and encrypts with AES-256-GCM. The
// new account ID is passed as associated data, binding each envelope to the
// account it belongs to. Open reverses the process with the recipient's
// private key.
package keyseal
