package config

// FileConfig is the root of a workload configuration file.
type FileConfig struct {
	Logging Logging `yaml:"logging"`
	Cells   []Cell  `yaml:"cells"`
}

// Logging configures the process logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Cell describes one shared cell and the concurrent workload to run
// against it.
type Cell struct {
	Name       string `yaml:"name"`
	Initial    int64  `yaml:"initial"`
	Readers    int    `yaml:"readers"`
	Writers    int    `yaml:"writers"`
	Iterations int    `yaml:"iterations"`
}
