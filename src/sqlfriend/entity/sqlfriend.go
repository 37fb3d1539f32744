// Package entity contains the domain types of the sqlfriend language server client.
package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// ConnectionsConfigKey is the key that lists the configured connections.
const ConnectionsConfigKey = "connections"

// Driver identifies the database engine behind a connection.
type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
)

// Connection is a named set of database settings handed to a language server.
type Connection struct {
	Name     string             `yaml:"name" json:"name" zap:"name"`
	Settings ConnectionSettings `yaml:"settings" json:"settings" zap:"settings"`
}

// ConnectionSettings holds the driver specific fields of a connection.
// Filename is used by sqlite only; the network fields by mysql and postgres.
type ConnectionSettings struct {
	Driver   Driver `yaml:"driver" json:"driver"`
	Filename string `yaml:"filename" json:"filename,omitempty"`
	Host     string `yaml:"host" json:"host,omitempty"`
	Port     string `yaml:"port" json:"port,omitempty"`
	User     string `yaml:"user" json:"user,omitempty"`
	Password string `yaml:"password" json:"-"`
	Database string `yaml:"database" json:"database,omitempty"`
}

// PortNumber parses the configured port. ok is false when no port is configured.
func (s ConnectionSettings) PortNumber() (port uint16, ok bool, err error) {
	if s.Port == "" {
		return 0, false, nil
	}
	p, err := strconv.ParseUint(s.Port, 10, 16)
	if err != nil {
		return 0, false, fmt.Errorf("invalid port %q: %w", s.Port, err)
	}
	return uint16(p), true, nil
}

// String implements fmt.Stringer without exposing the password.
func (s ConnectionSettings) String() string {
	switch s.Driver {
	case DriverSqlite:
		return fmt.Sprintf("Sqlite { filename: %q }", s.Filename)
	case DriverMySQL, DriverPostgres:
		name := "MySql"
		if s.Driver == DriverPostgres {
			name = "Postgres"
		}
		return fmt.Sprintf("%s { host: %q, port: %q, user: %q, database: %q }", name, s.Host, s.Port, s.User, s.Database)
	default:
		return fmt.Sprintf("Unknown { driver: %q }", s.Driver)
	}
}

// Validate reports whether the connection carries the fields its driver needs.
func (c Connection) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("connection name is required")
	}
	switch c.Settings.Driver {
	case DriverSqlite:
		if c.Settings.Filename == "" {
			return fmt.Errorf("connection %q: sqlite requires a filename", c.Name)
		}
	case DriverMySQL, DriverPostgres:
		if c.Settings.Host == "" {
			return fmt.Errorf("connection %q: %s requires a host", c.Name, c.Settings.Driver)
		}
		if _, _, err := c.Settings.PortNumber(); err != nil {
			return fmt.Errorf("connection %q: %w", c.Name, err)
		}
	default:
		return fmt.Errorf("connection %q: unknown driver %q", c.Name, c.Settings.Driver)
	}
	return nil
}

// ServerKind identifies a supported language server.
type ServerKind string

const (
	ServerKindSqls              ServerKind = "sqls"
	ServerKindSqlLanguageServer ServerKind = "sql-language-server"
	ServerKindPostgresTools     ServerKind = "postgrestools"
)

// ServerKinds lists every supported language server.
var ServerKinds = []ServerKind{ServerKindSqls, ServerKindSqlLanguageServer, ServerKindPostgresTools}

// ParseServerKind resolves a server name, ignoring case.
func ParseServerKind(name string) (ServerKind, error) {
	for _, k := range ServerKinds {
		if strings.EqualFold(string(k), strings.TrimSpace(name)) {
			return k, nil
		}
	}
	valid := make([]string, len(ServerKinds))
	for i, k := range ServerKinds {
		valid[i] = string(k)
	}
	return "", fmt.Errorf("unknown language server %q, expected one of: %s", name, strings.Join(valid, ", "))
}

// Verbosity is the tier of a user-visible output line.
type Verbosity int

const (
	VerbosityError Verbosity = iota
	VerbosityWarn
	VerbosityStandard
	VerbosityDebug
)

// String implements fmt.Stringer.
func (v Verbosity) String() string {
	switch v {
	case VerbosityError:
		return "error"
	case VerbosityWarn:
		return "warn"
	case VerbosityStandard:
		return "standard"
	case VerbosityDebug:
		return "debug"
	}
	return fmt.Sprintf("Verbosity(%d)", int(v))
}

// OutputLine is one line of user-visible output.
type OutputLine struct {
	Verbosity Verbosity
	Text      string
}

// DiagnosticReport is the rendered form of one publishDiagnostics notification.
type DiagnosticReport struct {
	URI  string
	Text string
}

// Command is an entry of the REPL command registry.
type Command struct {
	Name        string
	Description string
	Usage       string
}
