package sshx

import (
	"os"
	"path/filepath"
	"strings"

	cryptossh "golang.org/x/crypto/ssh"
)

// authMethod builds the golang.org/x/crypto/ssh.AuthMethod for cfg,
// handling password and public-key variants per §4.1.
func authMethod(cfg Config) (cryptossh.AuthMethod, error) {
	switch cfg.AuthType {
	case AuthPassword:
		return cryptossh.Password(cfg.Password), nil
	case AuthPublicKey:
		return publicKeyAuthMethod(cfg.KeyPath, cfg.Passphrase)
	default:
		return nil, newErr(KindAuthFailed, "unsupported auth type", nil)
	}
}

// publicKeyAuthMethod expands a leading "~/" against the user's home
// directory, verifies the key file exists, loads it (with an optional
// passphrase), and wraps the resulting signer so it always signs with
// SHA-256 (rsa-sha2-256) rather than the legacy SHA-1 ssh-rsa algorithm that
// modern OpenSSH servers reject.
func publicKeyAuthMethod(keyPath, passphrase string) (cryptossh.AuthMethod, error) {
	path := expandTilde(keyPath)

	if _, err := os.Stat(path); err != nil {
		return nil, errKeyNotFound(path)
	}

	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, errKeyNotFound(path)
	}

	signer, err := parseSigner(keyData, passphrase)
	if err != nil {
		return nil, err
	}

	signer, err = preferSHA256(signer)
	if err != nil {
		return nil, errKeyDecrypt("failed to configure signer", err)
	}

	return cryptossh.PublicKeys(signer), nil
}

func parseSigner(keyData []byte, passphrase string) (cryptossh.Signer, error) {
	var signer cryptossh.Signer
	var err error

	if passphrase != "" {
		signer, err = cryptossh.ParsePrivateKeyWithPassphrase(keyData, []byte(passphrase))
	} else {
		signer, err = cryptossh.ParsePrivateKey(keyData)
	}
	if err != nil {
		if isPassphraseError(err) {
			return nil, errKeyDecrypt("passphrase needed or wrong passphrase", err)
		}
		return nil, errKeyDecrypt("failed to parse private key", err)
	}
	return signer, nil
}

// isPassphraseError reports whether err indicates the key is encrypted and
// the supplied passphrase (if any) did not decrypt it.
func isPassphraseError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "encrypt") || strings.Contains(msg, "passphrase") || strings.Contains(msg, "decrypt")
}

// preferSHA256 wraps an RSA signer so it always negotiates rsa-sha2-256
// instead of the legacy ssh-rsa (SHA-1) algorithm. Non-RSA signers
// (Ed25519, ECDSA) are returned unchanged — they have no SHA-1 variant to
// avoid.
func preferSHA256(signer cryptossh.Signer) (cryptossh.Signer, error) {
	algSigner, ok := signer.(cryptossh.AlgorithmSigner)
	if !ok {
		return signer, nil
	}
	if signer.PublicKey().Type() != cryptossh.KeyAlgoRSA {
		return signer, nil
	}
	return cryptossh.NewSignerWithAlgorithms(algSigner, []string{cryptossh.KeyAlgoRSASHA256})
}

// expandTilde expands a leading "~/" against the current user's home
// directory. Paths without that prefix are returned unchanged.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
