package core

type Conf struct {
	Version            string  `long:"version" description:"version of the simulator" env:"QEC_VERSION"`
	DevMode            bool    `long:"dev-mode" description:"run in dev mode" env:"QEC_DEV_MODE"`
	DisableStdoutLog   bool    `long:"disable-stdout-log" description:"do not log in standard output" env:"QEC_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool    `long:"enable-file-log" description:"enable log in file" env:"QEC_ENABLE_FILE_LOG"`
	LogDir             string  `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QEC_LOG_DIR"`
	LogLevel           string  `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QEC_LOG_LEVEL"`
	LogRotationMaxDays int     `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QEC_LOG_ROTATION_MAX_DAYS"`
	SettingPath        string  `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QEC_SETTING_PATH"`
	Workers            int     `long:"workers" description:"number of scenarios simulated at the same time" default:"4" env:"QEC_WORKERS"`
	QueueMaxSize       int     `long:"queue-max-size" description:"queue max size" default:"1000" env:"QEC_QUEUE_MAX_SIZE"`
	Shots              int     `long:"shots" description:"shots sampled from the recovered pair (0 disables sampling)" default:"0" env:"QEC_SHOTS"`
	Seed               int64   `long:"seed" description:"base seed of the per-scenario entropy source" default:"1" env:"QEC_SEED"`
	DecoderPolicy      string  `long:"decoder-policy" description:"syndrome decoder policy (single rejects errors in more than one block)" default:"per-block" choice:"single" choice:"per-block" env:"QEC_DECODER_POLICY"`
	Epsilon            float64 `long:"epsilon" description:"amplitudes below this magnitude are treated as zero" default:"1e-10" env:"QEC_EPSILON"`
	Output             string  `long:"output" description:"report format" default:"text" choice:"text" choice:"json" env:"QEC_OUTPUT"`
}
