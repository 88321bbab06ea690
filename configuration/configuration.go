package configuration

import (
	"encoding/json"
	"io/fs"
	"io/ioutil"
)

type Configuration struct {
	NodeConfig       *NodeConfiguration
	LogConfig        *LogConfiguration
	NetworkConfig    *NetworkConfiguration
	ConnectConfig    *ConnectConfiguration
	RequestConfig    *RequestConfiguration
	ReconcilerConfig *ReconcilerConfiguration
}

func DefConfiguration() *Configuration {
	return &Configuration{
		NodeConfig:       DefNodeConfiguration(),
		LogConfig:        DefLogConfiguration(),
		NetworkConfig:    DefNetworkConfiguration(),
		ConnectConfig:    DefConnectConfiguration(),
		RequestConfig:    DefRequestConfiguration(),
		ReconcilerConfig: DefReconcilerConfiguration(),
	}
}

func (config *Configuration) Save(fileFullName string) error {
	dataBytes, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return ioutil.WriteFile(fileFullName, dataBytes, fs.ModePerm)
}

// Load overlays the file content on config, sections absent from the file keep their current values.
func (config *Configuration) Load(fileFullName string) error {
	dataBytes, err := ioutil.ReadFile(fileFullName)
	if err != nil {
		return err
	}

	return json.Unmarshal(dataBytes, config)
}

func LoadConfiguration(fileFullName string) (*Configuration, error) {
	config := DefConfiguration()
	if fileFullName == "" {
		return config, nil
	}

	if err := config.Load(fileFullName); err != nil {
		return nil, err
	}

	return config, nil
}
