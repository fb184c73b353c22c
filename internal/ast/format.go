package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders the file in canonical source form. Re-parsing the output
// yields an identical tree, which is what makes formatting idempotent.
func Format(f *File) string {
	var b strings.Builder
	for i, m := range f.Modules {
		if i > 0 {
			b.WriteString("\n")
		}
		formatModule(&b, m)
	}
	for i, s := range f.Sessions {
		if i > 0 || len(f.Modules) > 0 {
			b.WriteString("\n")
		}
		formatSession(&b, s)
	}
	return b.String()
}

// Clock renders a second count as a m:ss literal.
func Clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatModule(b *strings.Builder, m *Module) {
	fmt.Fprintf(b, "module %s @%s {\n", m.Name, m.Version)
	for _, a := range m.Annotations {
		b.WriteString("  @" + a.Name)
		if len(a.Args) > 0 {
			quoted := make([]string, len(a.Args))
			for i, arg := range a.Args {
				quoted[i] = strconv.Quote(arg)
			}
			b.WriteString("(" + strings.Join(quoted, ", ") + ")")
		}
		b.WriteString("\n")
	}
	for _, ref := range m.Imports {
		fmt.Fprintf(b, "  import %s\n", ref)
	}
	if len(m.Vars) > 0 {
		b.WriteString("  vars {\n")
		for _, v := range m.Vars {
			formatVar(b, v)
		}
		b.WriteString("  }\n")
	}
	for _, c := range m.Components {
		formatComponent(b, c)
	}
	for _, s := range m.Scores {
		fmt.Fprintf(b, "  score %s {\n", s.Form)
		for _, field := range s.Fields {
			fmt.Fprintf(b, "    %s: %s\n", field.Name, field.Type)
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
}

func formatVar(b *strings.Builder, v *VarDecl) {
	fmt.Fprintf(b, "    %s: %s", v.Name, v.Type)
	if v.Unit != "" {
		fmt.Fprintf(b, "(%s)", v.Unit)
	}
	if v.Default != "" || v.Quoted {
		if v.Quoted {
			fmt.Fprintf(b, " = %s", strconv.Quote(v.Default))
		} else {
			fmt.Fprintf(b, " = %s", v.Default)
		}
	}
	var constraints []string
	if v.Min != nil {
		constraints = append(constraints, "min="+formatFloat(*v.Min))
	}
	if v.Max != nil {
		constraints = append(constraints, "max="+formatFloat(*v.Max))
	}
	if len(constraints) > 0 {
		fmt.Fprintf(b, " [%s]", strings.Join(constraints, ", "))
	}
	b.WriteString("\n")
}

func formatComponent(b *strings.Builder, c *Component) {
	fmt.Fprintf(b, "  %s %s {\n", c.Class, formatForm(c.Form))
	for _, st := range c.Stmts {
		b.WriteString("    ")
		switch s := st.(type) {
		case *Rest:
			fmt.Fprintf(b, "REST %s", Clock(s.Seconds))
		case *Slot:
			fmt.Fprintf(b, "%d: %s", s.Index, formatMovement(s.Line))
		case *Movement:
			b.WriteString(formatMovement(s))
		}
		b.WriteString("\n")
	}
	b.WriteString("  }\n")
}

func formatForm(f *Form) string {
	switch f.Name {
	case "AMRAP", "EMOM":
		if f.SecondsVar != "" {
			return f.Name + " $" + f.SecondsVar
		}
		return f.Name + " " + Clock(f.Seconds)
	case "ForTime":
		if f.Cap > 0 {
			return f.Name + " cap " + Clock(f.Cap)
		}
		return f.Name
	case "RFT":
		return fmt.Sprintf("RFT %d", f.Rounds)
	case "CHIPPER":
		return "CHIPPER"
	case "TABATA", "INTERVAL":
		return fmt.Sprintf("%s %d*(%s on / %s off)", f.Name, f.Sets, Clock(f.WorkSeconds), Clock(f.RestSeconds))
	case "SETS":
		return fmt.Sprintf("%d*%d", f.Sets, f.Reps)
	default:
		if f.SecondsVar != "" {
			return f.Name + " $" + f.SecondsVar
		}
		if f.Seconds > 0 {
			return f.Name + " " + Clock(f.Seconds)
		}
		return f.Name
	}
}

func formatMovement(m *Movement) string {
	var parts []string
	if m.Quantity != nil {
		parts = append(parts, m.Quantity.String())
	}
	parts = append(parts, m.Name)
	if len(m.Scheme) > 0 {
		nums := make([]string, len(m.Scheme))
		for i, n := range m.Scheme {
			nums[i] = strconv.Itoa(n)
		}
		parts = append(parts, strings.Join(nums, "-"))
	}
	if m.Load != nil {
		parts = append(parts, "@"+m.Load.String())
	}
	if m.Sync {
		parts = append(parts, "SYNC")
	}
	if m.Shared {
		parts = append(parts, "@shared")
	}
	if m.Each {
		parts = append(parts, "@each")
	}
	if m.Note != "" {
		parts = append(parts, strconv.Quote(m.Note))
	}
	return strings.Join(parts, " ")
}

func formatSession(b *strings.Builder, s *Session) {
	fmt.Fprintf(b, "session %s {\n", strconv.Quote(s.Title))
	b.WriteString("  components {\n")
	for _, imp := range s.Imports {
		fmt.Fprintf(b, "    %s import %s", imp.Alias, imp.Ref)
		if len(imp.Overrides) > 0 {
			b.WriteString(" override {\n")
			for _, o := range imp.Overrides {
				if o.Quoted {
					fmt.Fprintf(b, "      %s = %s\n", o.Key, strconv.Quote(o.Raw))
				} else {
					fmt.Fprintf(b, "      %s = %s\n", o.Key, o.Raw)
				}
			}
			b.WriteString("    }")
		}
		b.WriteString("\n")
	}
	b.WriteString("  }\n")
	if len(s.Scoring) > 0 {
		b.WriteString("  scoring {\n")
		for _, d := range s.Scoring {
			fmt.Fprintf(b, "    %s: %s\n", d.Alias, strings.Join(d.Fields, "+"))
		}
		b.WriteString("  }\n")
	}
	if len(s.MetaOrder) > 0 {
		b.WriteString("  meta {\n")
		for _, k := range s.MetaOrder {
			fmt.Fprintf(b, "    %s = %s\n", k, strconv.Quote(s.Meta[k]))
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
