package db

import "fmt"

// DBConfigFromYamlObj builds the connection config from the parsed YAML
// section. Credentials may already have been overridden from env vars by the
// caller.
func DBConfigFromYamlObj(yamlObj DBConfigYaml) DBConfig {
	connStr := yamlObj.ConnectionStr
	username := yamlObj.Username
	password := yamlObj.Password
	prefix := yamlObj.ConnectionPrefix
	if connStr == "" || username == "" || password == "" {
		panic("couldn't read DB credentials")
	}
	URI := fmt.Sprintf(`mongodb%s://%s:%s@%s`, prefix, username, password, connStr)

	return DBConfig{
		URI:             URI,
		Timeout:         yamlObj.Timeout,
		IdleConnTimeout: yamlObj.IdleConnTimeout,
		MaxPoolSize:     uint64(yamlObj.MaxPoolSize),
		DBNamePrefix:    yamlObj.DBNamePrefix,
	}
}
