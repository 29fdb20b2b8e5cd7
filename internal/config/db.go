package config

// Supported gorm engines.
const (
	EngineSQLite   = "sqlite"
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
)

// DB holds the database configuration settings.
type DB struct {
	GormEngine  string // sqlite, mysql or postgres
	Path        string // database file, sqlite only
	Extras      string // extra dsn parameters
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string // postgres only
	AutoMigrate bool   // create or update tables on start
	LogLevel    string // gorm log level: silent, error, warn, info
}
