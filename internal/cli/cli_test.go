package cli

import "testing"

func TestNewRootCmd(t *testing.T) {
	cmd := NewRootCmd()

	want := map[string]bool{"scrape": false, "load": false, "run": false, "metrics": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if flag := cmd.PersistentFlags().Lookup("config"); flag == nil || flag.DefValue != "sources.yaml" {
		t.Errorf("config flag = %+v", flag)
	}
}
