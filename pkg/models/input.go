package models

// Input is one poll of the player's controls.
type Input struct {
	Accelerate   bool
	Brake        bool
	Left         bool
	Right        bool
	Nitro        bool
	Handbrake    bool
	PauseToggle  bool
	CameraToggle bool
}
