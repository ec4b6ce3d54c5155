// Package config loads typed configuration structs from environment
// variables using caarlos0/env tags, with optional .env file support for
// local development via godotenv.
//
// Values an endpoint can recover from at request time (by answering a
// structured missing_env error) should not be tagged `required`; reserve
// `required` for infrastructure the process cannot run without, such as the
// database connection string.
package config
