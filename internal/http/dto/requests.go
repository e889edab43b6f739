package dto

type LoginRequest struct {
	Address  string `json:"address"`
	ChainID  uint64 `json:"chain_id,omitempty"`
	DeviceID string `json:"device_id"`
}

type StacksConnectRequest struct {
	Address string `json:"address"`
}

type AtmosphereRequest struct {
	WeatherCode uint `json:"weather_code"`
}

type NudgeRequest struct {
	Recipient string `json:"recipient"`
}

type MessageRequest struct {
	Text string `json:"text"`
}

type PredictRequest struct {
	Level uint `json:"level"`
}
