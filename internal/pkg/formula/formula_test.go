package formula

import (
	"errors"
	"testing"
)

func testEnv() *Env {
	env := NewEnv()
	env.Set("rate_p_hr", 30)
	env.Set("total_shft_hr", 80)
	env.Set("basic_salary", 20000)
	env.Set("payroll_days", 15)
	return env
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		formula string
		want    float64
	}{
		{"basic_salary", 20000},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"basic_salary * 0.03", 600},
		{"rate_p_hr * total_shft_hr", 2400},
		{"basic_salary / payroll_days + 10", 20000.0/15 + 10},
		{"2 ^ 10", 1024},
		{"2 ^ 3 ^ 2", 512}, // right associative
		{"-payroll_days + 20", 5},
		{"sqrt(basic_salary / 2)", 100},
		{"abs(0 - 42)", 42},
		{"√(16)", 4},
		{"rate_p_hr × 2", 60},
		{"basic_salary ÷ 4", 5000},
	}
	for _, c := range cases {
		got, err := Evaluate(c.formula, testEnv())
		if err != nil {
			t.Errorf("Evaluate(%q) returned error: %v", c.formula, err)
			continue
		}
		if got != c.want {
			t.Errorf("Evaluate(%q) = %v, want %v", c.formula, got, c.want)
		}
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	const formula = "√(basic_salary) + rate_p_hr × payroll_days ^ 2"
	first, err := Evaluate(formula, testEnv())
	if err != nil {
		t.Fatalf("Evaluate(%q) returned error: %v", formula, err)
	}
	for i := 0; i < 10; i++ {
		got, err := Evaluate(formula, testEnv())
		if err != nil {
			t.Fatalf("Evaluate(%q) returned error on run %d: %v", formula, i, err)
		}
		if got != first {
			t.Fatalf("Evaluate(%q) = %v on run %d, want %v", formula, got, i, first)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	cases := []struct {
		formula string
	}{
		{"no_such_variable"},
		{"basic_salary +"},
		{"1 / 0"},
		{"sqrt(0 - 1)"},
		{"foo(1)"},
		{"(1 + 2"},
		{"1 2"},
		{"basic_salary @ 2"},
		{""},
	}
	for _, c := range cases {
		_, err := Evaluate(c.formula, testEnv())
		if err == nil {
			t.Errorf("Evaluate(%q) succeeded, want error", c.formula)
			continue
		}
		var evalErr *EvaluationError
		if !errors.As(err, &evalErr) {
			t.Errorf("Evaluate(%q) returned %T, want *EvaluationError", c.formula, err)
		}
	}
}

func TestEnvOrderAndOverwrite(t *testing.T) {
	env := NewEnv()
	env.Set("a", 1)
	env.Set("b", 2)
	env.Set("a", 3)

	names := env.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("Names() = %v, want [a b]", names)
	}
	if v, _ := env.Get("a"); v != 3 {
		t.Errorf("Get(a) = %v, want 3 after overwrite", v)
	}
}

func TestSanitizeStable(t *testing.T) {
	src := "√(x_val) × 2"
	first := Sanitize(src)
	for i := 0; i < 5; i++ {
		if got := Sanitize(src); got != first {
			t.Fatalf("Sanitize(%q) = %q, want %q", src, got, first)
		}
	}
	if first != "sqrt(x_val) * 2" {
		t.Errorf("Sanitize(%q) = %q, want %q", src, first, "sqrt(x_val) * 2")
	}
}
