package rediskey

import "fmt"

const (
	SessionRevokedPrefix = "session:revoked"
	SequencePrefix       = "seq"
)

func NamespaceKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// BuildSessionRevokedKey returns "session:revoked:{jti}"
func BuildSessionRevokedKey(jti string) string {
	return NamespaceKey(SessionRevokedPrefix, jti)
}

// BuildDailySequenceKey returns "seq:{prefix}:{yymmdd}"
func BuildDailySequenceKey(prefix, day string) string {
	return NamespaceKey(SequencePrefix, fmt.Sprintf("%s:%s", prefix, day))
}
