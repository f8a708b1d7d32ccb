package core

// NonSecretConf is the part of Conf echoed into reports.
type NonSecretConf struct {
	Version       string  `json:"version"`
	Workers       int     `json:"workers"`
	Shots         int     `json:"shots"`
	Seed          int64   `json:"seed"`
	DecoderPolicy string  `json:"decoder_policy"`
	Epsilon       float64 `json:"epsilon"`
	SettingPath   string  `json:"setting_path"`
}

type Info struct {
	Conf *NonSecretConf `json:"conf"`
}

var CurrentInfo *Info

func NewInfo(c *Conf) *Info {
	return &Info{
		Conf: &NonSecretConf{
			Version:       Version,
			Workers:       c.Workers,
			Shots:         c.Shots,
			Seed:          c.Seed,
			DecoderPolicy: c.DecoderPolicy,
			Epsilon:       c.Epsilon,
			SettingPath:   c.SettingPath,
		},
	}
}

func SetInfo(c *Conf) {
	CurrentInfo = NewInfo(c)
}
