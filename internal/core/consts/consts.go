package consts

// ConstValue marks compile-time settings that are not read from config.
type ConstValue = string

// EnvKey marks names of environment variables.
type EnvKey = string
