package sshx

// AuthType discriminates the two supported SSH authentication variants.
type AuthType string

const (
	AuthPassword  AuthType = "password"
	AuthPublicKey AuthType = "publickey"
)

// ForwardPort describes one local→remote TCP forward to establish alongside
// the SSH connection: a listener on 127.0.0.1:LocalPort relays accepted
// connections to RemoteHost:RemotePort via direct-tcpip.
type ForwardPort struct {
	LocalPort  int    `json:"local_port"`
	RemoteHost string `json:"remote_host"`
	RemotePort int    `json:"remote_port"`
}

// Config is the immutable connection spec for one SSH session.
type Config struct {
	Host     string
	Port     int
	Username string

	AuthType AuthType
	Password string // set when AuthType == AuthPassword

	KeyPath    string // set when AuthType == AuthPublicKey; may start with "~/"
	Passphrase string // optional, only meaningful with KeyPath

	ForwardPorts []ForwardPort
}
