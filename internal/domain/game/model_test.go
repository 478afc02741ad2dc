package game

import (
	"testing"

	sonic "github.com/bytedance/sonic"
)

func TestEvent_MarshalJSONMergesPlayAndAttribution(t *testing.T) {
	t.Parallel()

	event := Event{
		Play: map[string]any{
			"typeDescKey":  "goal",
			"sortOrder":    float64(312),
			"timeInPeriod": "05:31",
			"details": map[string]any{
				"xCoord": float64(45),
				"yCoord": float64(-10),
			},
		},
		TeamName:   "Boston Bruins",
		TeamAbbrev: "BOS",
		PlayerID:   8478401,
		IsHomeTeam: true,
	}

	raw, err := sonic.ConfigStd.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded map[string]any
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode event: %v", err)
	}

	// Every raw upstream key survives.
	if decoded["typeDescKey"] != "goal" || decoded["sortOrder"] != float64(312) || decoded["timeInPeriod"] != "05:31" {
		t.Fatalf("raw play keys lost: %v", decoded)
	}
	details, _ := decoded["details"].(map[string]any)
	if details["xCoord"] != float64(45) {
		t.Fatalf("nested details lost: %v", decoded)
	}

	// The attribution fields are merged in beside them.
	if decoded["teamName"] != "Boston Bruins" || decoded["teamAbbrev"] != "BOS" {
		t.Fatalf("attribution lost: %v", decoded)
	}
	if decoded["playerId"] != float64(8478401) {
		t.Fatalf("playerId lost: %v", decoded)
	}
	if decoded["isHomeTeam"] != true {
		t.Fatalf("isHomeTeam lost: %v", decoded)
	}
}

func TestGame_Validate(t *testing.T) {
	t.Parallel()

	valid := Game{ID: 1, Events: []Event{{TeamAbbrev: "BOS"}}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid game rejected: %v", err)
	}
	if err := (Game{Events: []Event{{}}}).Validate(); err == nil {
		t.Fatal("expected zero id rejected")
	}
	if err := (Game{ID: 1}).Validate(); err == nil {
		t.Fatal("expected empty events rejected")
	}
}
