package configs

// AppVersion 应用版本，构建时通过 -ldflags "-X" 注入.
var AppVersion = "dev"
