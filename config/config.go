package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"
)

// Storage backend names as reported by /health
const (
	BackendPostgres = "postgres"
	BackendCosmos   = "cosmos"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// DocumentConfig locates the embedded document store file
type DocumentConfig struct {
	Path string `yaml:"path"`
}

// UsersConfig points at the external users-api.
// Timeout is in seconds; 0 disables the client timeout.
type UsersConfig struct {
	Baseurl string `yaml:"baseurl"`
	Timeout int    `yaml:"timeout"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Backend  string         `yaml:"backend"`
	Database DBConfig       `yaml:"database"`
	Document DocumentConfig `yaml:"document"`
	Users    UsersConfig    `yaml:"users"`
	Logger   LogConfig      `yaml:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "productgate",
		Location: "Asia/Jakarta",
		Workdir:  "/var/productgate",
		Debug:    false,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 4002,
	},
	Backend: BackendPostgres,
	Database: DBConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "productgate",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Users: UsersConfig{
		Baseurl: "http://users-api:4001",
		Timeout: 0,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/productgate/productgate.log",
	},
}

func setEnvStrValue(name string, target *string) {
	if v := os.Getenv(name); v != "" {
		*target = v
	}
}

func setEnvIntValue(name string, target *int) {
	if v := os.Getenv(name); v != "" {
		*target = cast.ToInt(v)
	}
}

// LoadConfig reads the yaml config file and applies environment overrides.
// A missing file is not an error; defaults apply.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig

	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				panic(err)
			}
		}
	}

	setEnvStrValue("PRODUCTGATE_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvStrValue("PRODUCTGATE_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("PRODUCTGATE_WEB_PORT", &cfg.Web.Port)
	setEnvStrValue("PRODUCTS_BACKEND", &cfg.Backend)
	setEnvStrValue("PRODUCTGATE_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("PRODUCTGATE_DB_PORT", &cfg.Database.Port)
	setEnvStrValue("PRODUCTGATE_DB_NAME", &cfg.Database.Name)
	setEnvStrValue("PRODUCTGATE_DB_USER", &cfg.Database.User)
	setEnvStrValue("PRODUCTGATE_DB_PWD", &cfg.Database.Passwd)
	setEnvStrValue("PRODUCTGATE_DOCUMENT_PATH", &cfg.Document.Path)
	setEnvStrValue("USERS_API_URL", &cfg.Users.Baseurl)
	setEnvIntValue("PRODUCTGATE_USERS_TIMEOUT", &cfg.Users.Timeout)
	setEnvStrValue("PRODUCTGATE_LOGGER_MODE", &cfg.Logger.Mode)

	// Anything that is not the document backend falls back to postgres.
	if strings.ToLower(cfg.Backend) == BackendCosmos {
		cfg.Backend = BackendCosmos
	} else {
		cfg.Backend = BackendPostgres
	}

	if cfg.Document.Path == "" {
		cfg.Document.Path = filepath.Join(cfg.System.Workdir, "data", "products.db")
	}

	return cfg
}

// InitDirs creates the working directories used by storage and metrics
func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0o755)
}
