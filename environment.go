package consulboot

// defines available environment variables for configuration
const (
	EnvLogsVerbose    = "RUN_CONSUL_LOGS_VERBOSE"     // enable verbose logging. boolean, see strconv.ParseBool for valid values.
	EnvClusterTagName = "RUN_CONSUL_CLUSTER_TAG_NAME" // tag shared by instances that should join the same consul cluster.
	EnvClusterSizeKey = "RUN_CONSUL_CLUSTER_SIZE_KEY" // custom metadata key holding the intended server cluster size.
	EnvRunAsUser      = "RUN_CONSUL_USER"             // user the supervised agent runs as.
)
