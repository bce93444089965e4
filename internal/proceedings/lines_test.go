package proceedings

import "testing"

func TestAbstractStart(t *testing.T) {
	tests := []struct {
		line      string
		wantCode  string
		wantTitle string
		wantOK    bool
	}{
		{"S-123. Rituximab in refractory stiff person syndrome", "S-123", "Rituximab in refractory stiff person syndrome", true},
		{"42. GAD antibody titers and outcome", "42", "GAD antibody titers and outcome", true},
		{"P-5. too short code", "", "", false}, // Codes are 2-3 digits
		{"Rituximab in refractory stiff person syndrome", "", "", false},
		{"3.14 is not an abstract code", "", "", false},
	}
	for _, tt := range tests {
		code, title, ok := AbstractStart(tt.line)
		if ok != tt.wantOK {
			t.Errorf("AbstractStart(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			continue
		}
		if ok && (code != tt.wantCode || title != tt.wantTitle) {
			t.Errorf("AbstractStart(%q) = (%q, %q), want (%q, %q)", tt.line, code, title, tt.wantCode, tt.wantTitle)
		}
	}
}

func TestAuthorLike(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"J. Smith, MD, K. Jones, PhD", true},
		{"Smith J, Jones K, Lee H, Park S", true},
		{"Smith J; Jones K, Lee H", true},
		{"Plasma exchange for progressive encephalomyelitis with rigidity", false},
		{"A single comma, appears here", false},
	}
	for _, tt := range tests {
		if got := AuthorLike(tt.line); got != tt.want {
			t.Errorf("AuthorLike(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestTitleLike(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Outcomes of immunotherapy in stiff person syndrome patients", true},
		{"Long term follow up of anti GAD positive cases", true},
		{"Short line", false}, // Too few words
		{"S-101. Coded header lines are not plain titles here", false},
		{"Department of Neurology, University of Milan, Italy", false}, // Institution
		{"Smith J, Jones K, Lee H, Park S", false},                     // Authors
		{"Downloaded from https://onlinelibrary.wiley.com, terms and conditions apply", false},
	}
	for _, tt := range tests {
		if got := TitleLike(tt.line); got != tt.want {
			t.Errorf("TitleLike(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestFooterLike(t *testing.T) {
	if !FooterLike("ANNALS of Neurology, Volume 90") {
		t.Error("journal footer not detected")
	}
	if FooterLike("Baseline characteristics of included patients") {
		t.Error("body line flagged as footer")
	}
}

func TestCountProgramMarkers(t *testing.T) {
	text := normalizeMarkerText("73rd Annual Meeting — Program and Abstracts; Poster Sessions I-III")
	if got := CountProgramMarkers(text); got != 3 {
		t.Errorf("CountProgramMarkers = %d, want 3", got)
	}
	if got := CountProgramMarkers(normalizeMarkerText("An ordinary case report")); got != 0 {
		t.Errorf("CountProgramMarkers = %d, want 0", got)
	}
}
