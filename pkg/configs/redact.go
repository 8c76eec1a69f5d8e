package configs

const redactedValue = "******"

// Redacted 返回隐藏了密码与密钥的配置副本，用于打印和排障.
func (c AppConfig) Redacted() AppConfig {
	out := c

	mask(&out.DB.Password)
	mask(&out.S3.SecretAccessKey)
	mask(&out.KV.Redis.Password)
	mask(&out.KV.NATS.Password)
	mask(&out.MQ.NATS.Password)
	mask(&out.MQ.Redis.Password)

	return out
}

func mask(s *string) {
	if *s != "" {
		*s = redactedValue
	}
}
