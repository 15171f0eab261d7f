package plugins

// EchoConfig is decoded from the builtin.plugins module settings.
type EchoConfig struct {
	Prefix string `json:"prefix"`
}

// Echo is registered as plugins echo.
type Echo struct {
	prefix string
}

// NewEcho returns an Echo plugin.
func NewEcho(c EchoConfig) *Echo { return &Echo{prefix: c.Prefix} }

// Echo returns msg with the configured prefix.
func (e *Echo) Echo(msg string) string { return e.prefix + msg }
