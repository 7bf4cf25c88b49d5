package store

const (
	// DriverValkey selects github.com/valkey-io/valkey-go.
	DriverValkey = "valkey"
	// DriverGoRedis selects github.com/redis/go-redis/v9.
	DriverGoRedis = "goredis"
)

// Config holds configuration for the store client
type Config struct {
	// URI is the default store address used when no address is given on the command line
	URI string

	// Driver selects the client library, DriverValkey or DriverGoRedis
	Driver string

	// Username for authentication, overridden by credentials in the address
	Username string

	// Password for authentication, overridden by credentials in the address
	Password string

	// ConnectionTimeout specifies the timeout for connecting to the store, in seconds
	ConnectionTimeout int

	// OperationTimeout specifies the timeout for store operations, in seconds
	OperationTimeout int
}
