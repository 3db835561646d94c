package consul

import (
	"fmt"
	"net"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

func NewClient(addr string) (*consulapi.Client, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}
	return client, nil
}

// Registration builds the agent registration for a service listening on
// httpAddr (host:port), health checked through its /ping endpoint.
func Registration(serviceName, httpAddr string) (*consulapi.AgentServiceRegistration, error) {
	host, portStr, err := net.SplitHostPort(httpAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid http address %q: %w", httpAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in %q: %w", httpAddr, err)
	}
	if host == "" {
		host = "localhost"
	}
	return &consulapi.AgentServiceRegistration{
		ID:      serviceName + "-" + host + "-" + portStr,
		Name:    serviceName,
		Address: host,
		Port:    port,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s/ping", net.JoinHostPort(host, portStr)),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}, nil
}

// Register adds the service to the local agent and returns its id.
func Register(client *consulapi.Client, serviceName, httpAddr string) (string, error) {
	reg, err := Registration(serviceName, httpAddr)
	if err != nil {
		return "", err
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return "", fmt.Errorf("failed to register %s with consul: %w", serviceName, err)
	}
	return reg.ID, nil
}

func Deregister(client *consulapi.Client, serviceID string) error {
	if err := client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", serviceID, err)
	}
	return nil
}
