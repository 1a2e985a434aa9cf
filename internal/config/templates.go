package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "scenario":
		return scenarioTemplate, nil
	case "service":
		return serviceTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const scenarioTemplate = `name = "broadcast-qpsk"
numerology = 0
payload_bytes = 1024
snr = 10.0

[control]
sequence = 0
subframe = 0
first = true
last = true

[allocation]
target_ue = 15
first_rb = 0
num_rb = 132

[mimo]
scheme = "none"
antennas = 1
precoding = 0

[mcs]
# set index to use the MCS table, or modulation + coderate explicitly
modulation = "qpsk"
coderate = 0.5
power_offset = 0
`

const serviceTemplate = `name = "capacityd"
addr = ":9300"
cors_origins = ["http://localhost:3000"]
metrics = true
default_numerology = 0
`
