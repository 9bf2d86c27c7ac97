package evidence

// Config tunes retrieval and ingest.
type Config struct {
	K           int `yaml:"k"`
	CacheSize   int `yaml:"cache_size"`
	Concurrency int `yaml:"concurrency"`
	BatchSize   int `yaml:"batch_size"`
}

func DefaultConfig() Config {
	return Config{
		K:           3,
		CacheSize:   1024,
		Concurrency: 4,
		BatchSize:   16,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	return c
}
