package audit

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSplitSignature(t *testing.T) {
	tests := []struct {
		sig, entity, action string
	}{
		{"PatientService.Create(..)", "Patient", "Create"},
		{"UserService.CreateUser(..)", "User", "CreateUser"},
		{"AuthController.Login()", "Auth", "Login"},
		{"AccountService.Login", "Account", "Login"},
		{"standalone", "", "standalone"},
		{"  MedicalRecordService.Update(..)  ", "MedicalRecord", "Update"},
	}
	for _, tt := range tests {
		entity, action := SplitSignature(tt.sig)
		if entity != tt.entity || action != tt.action {
			t.Errorf("SplitSignature(%q) = %q, %q; want %q, %q", tt.sig, entity, action, tt.entity, tt.action)
		}
	}
}

func TestIsCredentialAction(t *testing.T) {
	yes := []string{"login", "Login", "LOGIN", "criarUsuario", "CriarUsuarioAdmin", "CreateUser", "createUserAccount"}
	no := []string{"Logout", "LoginHistory", "Create", "Update", "FindByUsername", "criarPaciente"}
	for _, a := range yes {
		if !IsCredentialAction(a) {
			t.Errorf("IsCredentialAction(%q) = false, want true", a)
		}
	}
	for _, a := range no {
		if IsCredentialAction(a) {
			t.Errorf("IsCredentialAction(%q) = true, want false", a)
		}
	}
}

type samplePatient struct {
	Name      string
	BirthDate time.Time
	Owner     *sampleUser
	tags      []string
}

type sampleUser struct {
	Username string
	Password Secret
}

type stringerID int

func (s stringerID) String() string { return "ID-" + string(rune('0'+int(s))) }

func TestRenderDetails_MasksCredentialArgument(t *testing.T) {
	got := RenderDetails("CreateUser", []any{"bob", "s3cret", "ADMIN"})
	if strings.Contains(got, "s3cret") {
		t.Fatalf("details leaked password: %s", got)
	}
	want := `[bob, "****", ADMIN]`
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	got = RenderDetails("Login", []any{"dr.silva", "hunter2"})
	if got != `[dr.silva, "****"]` {
		t.Errorf("login details = %s", got)
	}
}

func TestRenderDetails_KeepsOtherArguments(t *testing.T) {
	got := RenderDetails("Update", []any{int64(42), "s3cret"})
	if got != "[42, s3cret]" {
		t.Errorf("got %s, want [42, s3cret]", got)
	}
	if got := RenderDetails("List", nil); got != "[]" {
		t.Errorf("empty args rendered as %s", got)
	}
	if got := RenderDetails("Login", []any{"only-one"}); got != "[only-one]" {
		t.Errorf("single arg login rendered as %s", got)
	}
}

func TestRenderDetails_SecretAlwaysMasked(t *testing.T) {
	got := RenderDetails("ChangePassword", []any{"bob", Secret("hunter2")})
	if strings.Contains(got, "hunter2") {
		t.Fatalf("secret leaked: %s", got)
	}

	nested := &samplePatient{Name: "Maria", Owner: &sampleUser{Username: "maria", Password: "pw-123"}}
	got = RenderDetails("RegisterPatient", []any{nested})
	if strings.Contains(got, "pw-123") {
		t.Fatalf("nested secret leaked: %s", got)
	}
	if !strings.Contains(got, "Username:maria") {
		t.Errorf("expected nested username in %s", got)
	}
}

func TestRenderArg(t *testing.T) {
	birth := time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC)
	p := &samplePatient{Name: "Maria  da\nSilva", BirthDate: birth, tags: []string{"a", "b"}}

	got := RenderArg(p)
	want := "samplePatient{Name:Maria da Silva BirthDate:1990-03-04T00:00:00Z Owner:null tags:[a b]}"
	if got != want {
		t.Errorf("RenderArg = %q\nwant        %q", got, want)
	}
	if strings.Contains(got, "0x") || strings.Contains(got, "audit.") {
		t.Errorf("rendering leaked address or package: %s", got)
	}

	cases := map[string]any{
		"null":     nil,
		"true":     true,
		"3.5":      3.5,
		"ID-7":     stringerID(7),
		"boom":     errors.New("boom"),
		"map[a:1]": map[string]int{"a": 1},
		"[1 2]":    []int{1, 2},
	}
	for want, arg := range cases {
		if got := RenderArg(arg); got != want {
			t.Errorf("RenderArg(%#v) = %q, want %q", arg, got, want)
		}
	}
}

func TestSanitize(t *testing.T) {
	in := "failed for *patient.Patient at 0xc000123456 via github.com/ehr/hospital/internal/domain/patient.Service"
	got := sanitize(in)
	for _, bad := range []string{"0xc000", "patient.Patient", "github.com"} {
		if strings.Contains(got, bad) {
			t.Errorf("sanitize left %q in %q", bad, got)
		}
	}
}

func TestDisplayActor(t *testing.T) {
	tests := map[string]string{
		"":              Anonymous,
		"   ":           Anonymous,
		"anonymousUser": Anonymous,
		Anonymous:       Anonymous,
		"dr.silva":      "Dr.silva",
		"ADMIN":         "Admin",
		"m":             "M",
	}
	for in, want := range tests {
		if got := DisplayActor(in); got != want {
			t.Errorf("DisplayActor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToView(t *testing.T) {
	ts := time.Date(2024, 5, 1, 14, 30, 5, 0, time.Local)
	v := ToView(&Record{ID: 3, Actor: "bob", Entity: "User", Action: "CreateUser", Timestamp: ts})
	if v.Timestamp != "01/05/2024 - 14:30:05" {
		t.Errorf("timestamp = %q", v.Timestamp)
	}
	if v.User != "Bob" || v.Details != "[]" {
		t.Errorf("unexpected view %+v", v)
	}
}
