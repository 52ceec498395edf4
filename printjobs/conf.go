package printjobs

import "time"

type Conf struct {
	Type  string `json:"type"` // memory, pgsql, mysql, redis
	Host  string `json:"host"`
	Port  int    `json:"port"`
	User  string `json:"user"`
	PW    string `json:"pw"`
	DB    string `json:"db"`     // database name (sql backends)
	DBNum int    `json:"db_num"` // database number (redis)
	TZ    string `json:"tz"`     // connection timezone (sql backends)
	DSN   string `json:"dsn"`    // to overwrite the default DSN

	KeyPrefix string `json:"key_prefix"` // key namespace (redis)

	LeaseTTLSec int `json:"lease_ttl_sec"` // processing lease, 0 = default
}

const defaultLeaseTTL = 10 * time.Minute

func (c *Conf) LeaseTTL() time.Duration {
	if c.LeaseTTLSec <= 0 {
		return defaultLeaseTTL
	}
	return time.Duration(c.LeaseTTLSec) * time.Second
}
