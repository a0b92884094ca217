package config

// Tree domains.
const (
	DomainInt64 = "int64"
	DomainBig   = "big"
	DomainFloat = "float"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Default configuration values.
const (
	DefaultLogLevel        = "info"
	DefaultLogFormat       = FormatText
	DefaultDomain          = DomainInt64
	DefaultValidate        = true
	DefaultColor           = true
	DefaultEvents          = false
	DefaultMetricsAddr     = ""
	DefaultOTLPEndpoint    = ""
	DefaultOTLPInsecure    = false
	DefaultSampleRatio     = 0.0
	DefaultShutdownTimeout = 5
)

const (
	defaultConfigName = "ivtree"
	envPrefix         = "IVTREE"
	userConfigDir     = ".config/ivtree"
	localConfigDir    = "./config"
)

// Domains lists the accepted tree domains.
func Domains() []string {
	return []string{DomainInt64, DomainBig, DomainFloat}
}
