package config

const (
	defaultLogFile            = "e-editor.log"
	defaultLogLevel           = "info"
	defaultLogFileMaxSize     = 20
	defaultLogFileMaxBackups  = 3
	defaultLogFileMaxAge      = 28
	defaultLogCompress        = false
	defaultPort               = 8080
	defaultHost               = "127.0.0.1"
	defaultData               = "/var/opt/e-editor"
	defaultDBFileName         = "books.db"
	defaultDSN                = defaultData + "/" + defaultDBFileName
	defaultWorkerPoolSize     = 2
	defaultMaxUploadSize      = 100
	defaultBusyTimeout        = 5000
	defaultCheckpointSchedule = "*/10 * * * *"
)

// Why use mapstructure instead of json, if use json as field tags, it can't recgnize the field, since the viper use mapstructure.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFilemaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the library database file
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data
	Data           string `mapstructure:"data"`
	WorkerPoolSize int    `mapstructure:"worker_pool_size"`
	// MaxUploadSize is the maximum size of an uploaded epub, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// BusyTimeout is how long sqlite waits on a locked file, in milliseconds
	BusyTimeout int `mapstructure:"busy_timeout"`
	// CheckpointSchedule is a cron spec for truncating the WAL file, empty disables it
	CheckpointSchedule string `mapstructure:"checkpoint_schedule"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:            defaultLogFile,
		LogLevel:           defaultLogLevel,
		LogFileMaxSize:     defaultLogFileMaxSize,
		LogFileMaxBackups:  defaultLogFileMaxBackups,
		LogFileMaxAge:      defaultLogFileMaxAge,
		LogCompress:        defaultLogCompress,
		DSN:                defaultDSN,
		Port:               defaultPort,
		Host:               defaultHost,
		Data:               defaultData,
		WorkerPoolSize:     defaultWorkerPoolSize,
		MaxUploadSize:      defaultMaxUploadSize,
		BusyTimeout:        defaultBusyTimeout,
		CheckpointSchedule: defaultCheckpointSchedule,
	}
	return Opts
}
