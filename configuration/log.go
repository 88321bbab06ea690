package configuration

type LogConfiguration struct {
	Level  string
	Format string
	Output string
	File   string
}

func DefLogConfiguration() *LogConfiguration {
	return &LogConfiguration{
		Level:  "info",
		Format: "text",
		Output: "stderr",
	}
}
