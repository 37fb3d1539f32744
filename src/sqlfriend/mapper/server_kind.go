package mapper

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sqlfriend/sqlfriend/src/sqlfriend/entity"
	"github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/fs"
)

const (
	_postgresToolsConfigFile    = "postgrestools.jsonc"
	_postgresToolsConfigPattern = "sqlfriend-postgrestools-"
	_protoTCP                   = "tcp"
)

// ServerCommand describes how to launch and initialize one language server.
type ServerCommand struct {
	Path string
	Args []string
	// InitializationOptions is nil for servers configured out of band.
	InitializationOptions interface{}
	// ConfigDir is a temporary directory owned by the session, empty if unused.
	ConfigDir string
}

// String implements fmt.Stringer.
func (c ServerCommand) String() string {
	return fmt.Sprintf("%s %v", c.Path, c.Args)
}

type sqlsConnectionConfig struct {
	Driver         string  `json:"driver"`
	Host           string  `json:"host,omitempty"`
	Port           *uint16 `json:"port,omitempty"`
	User           string  `json:"user,omitempty"`
	Passwd         string  `json:"passwd,omitempty"`
	DataSourceName string  `json:"dataSourceName,omitempty"`
	DBName         string  `json:"dbName,omitempty"`
	Proto          string  `json:"proto,omitempty"`
}

type sqlsInitializationOptions struct {
	ConnectionConfig sqlsConnectionConfig `json:"connectionConfig"`
}

type sqlLsConnectionConfig struct {
	Name     string  `json:"name"`
	Adapter  string  `json:"adapter"`
	Host     string  `json:"host,omitempty"`
	Port     *uint16 `json:"port,omitempty"`
	User     string  `json:"user,omitempty"`
	Password string  `json:"password,omitempty"`
	Filename string  `json:"filename,omitempty"`
	Database string  `json:"database,omitempty"`
}

type sqlLsInitializationOptions struct {
	Connections []sqlLsConnectionConfig `json:"connections"`
}

type postgresToolsDBConfig struct {
	Host     string  `json:"host,omitempty"`
	Port     *uint16 `json:"port,omitempty"`
	Username string  `json:"username,omitempty"`
	Password string  `json:"password,omitempty"`
	Database string  `json:"database,omitempty"`
}

type postgresToolsConfig struct {
	DB postgresToolsDBConfig `json:"db"`
}

// ServerKindToCommand resolves the executable, arguments and initialization options of kind for conn.
// For postgrestools it writes the connection into a fresh temporary config directory first.
func ServerKindToCommand(fsys fs.FS, kind entity.ServerKind, conn entity.Connection) (*ServerCommand, error) {
	switch kind {
	case entity.ServerKindSqls:
		opts, err := SqlsInitializationOptions(conn)
		if err != nil {
			return nil, err
		}
		return &ServerCommand{Path: "sqls", InitializationOptions: opts}, nil
	case entity.ServerKindSqlLanguageServer:
		opts, err := SqlLanguageServerInitializationOptions(conn)
		if err != nil {
			return nil, err
		}
		return &ServerCommand{
			Path:                  "sql-language-server",
			Args:                  []string{"up", "--method", "stdio", "-d"},
			InitializationOptions: opts,
		}, nil
	case entity.ServerKindPostgresTools:
		dir, err := WritePostgresToolsConfig(fsys, conn)
		if err != nil {
			return nil, err
		}
		return &ServerCommand{
			Path:      "postgrestools",
			Args:      []string{"lsp-proxy", "--config-path=" + dir},
			ConfigDir: dir,
		}, nil
	}
	return nil, fmt.Errorf("unsupported language server %q", kind)
}

// SqlsInitializationOptions converts a connection into a sqls connectionConfig.
func SqlsInitializationOptions(conn entity.Connection) (interface{}, error) {
	s := conn.Settings
	cfg := sqlsConnectionConfig{}
	switch s.Driver {
	case entity.DriverSqlite:
		cfg.Driver = "sqlite3"
		cfg.DataSourceName = "file:" + s.Filename
	case entity.DriverMySQL, entity.DriverPostgres:
		cfg.Driver = "mysql"
		if s.Driver == entity.DriverPostgres {
			cfg.Driver = "postgresql"
		}
		port, err := portPointer(s)
		if err != nil {
			return nil, err
		}
		cfg.Host = s.Host
		cfg.Port = port
		cfg.User = s.User
		cfg.Passwd = s.Password
		cfg.DBName = s.Database
		cfg.Proto = _protoTCP
	default:
		return nil, fmt.Errorf("unsupported driver %q for sqls", s.Driver)
	}
	return sqlsInitializationOptions{ConnectionConfig: cfg}, nil
}

// SqlLanguageServerInitializationOptions converts a connection into a sql-language-server connection list.
func SqlLanguageServerInitializationOptions(conn entity.Connection) (interface{}, error) {
	s := conn.Settings
	cfg := sqlLsConnectionConfig{Name: conn.Name}
	switch s.Driver {
	case entity.DriverSqlite:
		cfg.Adapter = "sqlite3"
		cfg.Filename = s.Filename
	case entity.DriverMySQL, entity.DriverPostgres:
		cfg.Adapter = string(s.Driver)
		port, err := portPointer(s)
		if err != nil {
			return nil, err
		}
		cfg.Host = s.Host
		cfg.Port = port
		cfg.User = s.User
		cfg.Password = s.Password
		cfg.Database = s.Database
	default:
		return nil, fmt.Errorf("unsupported driver %q for sql-language-server", s.Driver)
	}
	return sqlLsInitializationOptions{Connections: []sqlLsConnectionConfig{cfg}}, nil
}

// WritePostgresToolsConfig writes postgrestools.jsonc for a postgres connection into a new
// temporary directory and returns that directory.
func WritePostgresToolsConfig(fsys fs.FS, conn entity.Connection) (string, error) {
	s := conn.Settings
	if s.Driver != entity.DriverPostgres {
		return "", fmt.Errorf("cannot use postgrestools with non-postgres connection %q", conn.Name)
	}
	port, err := portPointer(s)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(postgresToolsConfig{DB: postgresToolsDBConfig{
		Host:     s.Host,
		Port:     port,
		Username: s.User,
		Password: s.Password,
		Database: s.Database,
	}})
	if err != nil {
		return "", fmt.Errorf("encoding postgrestools config: %w", err)
	}

	dir, err := fsys.MkdirTemp("", _postgresToolsConfigPattern)
	if err != nil {
		return "", fmt.Errorf("creating postgrestools config directory: %w", err)
	}
	if err := fsys.WriteFile(filepath.Join(dir, _postgresToolsConfigFile), string(data)); err != nil {
		return "", fmt.Errorf("writing postgrestools config: %w", err)
	}
	return dir, nil
}

func portPointer(s entity.ConnectionSettings) (*uint16, error) {
	port, ok, err := s.PortNumber()
	if err != nil || !ok {
		return nil, err
	}
	return &port, nil
}
