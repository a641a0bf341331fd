package model

// SubmitNameRequest is the DTO for POST /api/sessions/:id/name
type SubmitNameRequest struct {
	Name string `json:"name" validate:"required,notblank,max=64"`
}

// WedgeResponse describes one wedge of the wheel face for clients that draw it themselves.
type WedgeResponse struct {
	Index         int        `json:"index"`
	Prize         PrizeEntry `json:"prize"`
	StartAngle    float64    `json:"start_angle"`
	EndAngle      float64    `json:"end_angle"`
	CenterAngle   float64    `json:"center_angle"`
	Path          string     `json:"path"`
	LabelX        float64    `json:"label_x"`
	LabelY        float64    `json:"label_y"`
	LabelRotation float64    `json:"label_rotation"`
}

// WheelResponse is the API response DTO for GET /api/wheel
type WheelResponse struct {
	SegmentAngle  float64         `json:"segment_angle"`
	PointerAngle  float64         `json:"pointer_angle"`
	AnticipateMs  int64           `json:"anticipation_ms"`
	SpinMs        int64           `json:"spin_ms"`
	CelebrationMs int64           `json:"celebration_ms"`
	Wedges        []WedgeResponse `json:"wedges"`
}
