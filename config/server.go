package config

// ServerConfig holds the presentation and observability listen addresses.
// Empty addresses disable the corresponding server.
type ServerConfig struct {
	WSAddress   string `json:"ws_address"`
	PromAddress string `json:"prom_address"`
}
