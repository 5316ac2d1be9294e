package stats

import "testing"

func TestParseCPU(t *testing.T) {
	cpu := ParseCPU("12.5 3.2 0.1 1.02, 0.98, 0.77 4")
	if cpu.UserPercent != 12.5 || cpu.SystemPercent != 3.2 || cpu.IowaitPercent != 0.1 {
		t.Fatalf("unexpected cpu breakdown: %+v", cpu)
	}
	// Sum as float64 values, as ParseCPU does; an untyped constant sum would
	// round differently (15.8 vs 15.799999999999999).
	user, system, iowait := 12.5, 3.2, 0.1
	if got, want := cpu.TotalPercent, user+system+iowait; got != want {
		t.Fatalf("TotalPercent = %v, want %v", got, want)
	}
	if cpu.LoadAverage1m != 1.02 || cpu.LoadAverage5m != 0.98 || cpu.LoadAverage15m != 0.77 {
		t.Fatalf("unexpected load averages: %+v", cpu)
	}
	if cpu.Cores != 4 {
		t.Fatalf("Cores = %d, want 4", cpu.Cores)
	}
}

func TestParseCPUMalformedNeverErrors(t *testing.T) {
	cpu := ParseCPU("")
	if cpu.Cores != 1 {
		t.Fatalf("Cores on empty input = %d, want 1 (floor)", cpu.Cores)
	}
	if cpu.TotalPercent != 0 {
		t.Fatalf("TotalPercent on empty input = %v, want 0", cpu.TotalPercent)
	}
}

func TestParseMemDiskUptime(t *testing.T) {
	raw := "16000 8000 4000 9000 2000 100 1900 50G 20G 30G 40% up 3 days, 2 hours"
	mem, swap, disk, uptime := ParseMemDiskUptime(raw)

	if mem.Total != 16000 || mem.Used != 8000 || mem.Free != 4000 || mem.Available != 9000 {
		t.Fatalf("unexpected mem: %+v", mem)
	}
	if swap.Total != 2000 || swap.Used != 100 || swap.Free != 1900 {
		t.Fatalf("unexpected swap: %+v", swap)
	}
	if disk.Total != "50G" || disk.Used != "20G" || disk.Available != "30G" || disk.UsePercent != 40 {
		t.Fatalf("unexpected disk: %+v", disk)
	}
	if uptime != "up 3 days, 2 hours" {
		t.Fatalf("uptime = %q", uptime)
	}
}

func TestParseMemDiskUptimeMissingUptimeFallsBackToUnknown(t *testing.T) {
	_, _, _, uptime := ParseMemDiskUptime("1 2 3 4 5 6 7 8G 9G 10G 11%")
	if uptime != "Unknown" {
		t.Fatalf("uptime = %q, want Unknown", uptime)
	}
}

func TestCleanLine(t *testing.T) {
	if got := CleanLine("  Linux\n"); got != "Linux" {
		t.Fatalf("CleanLine = %q, want Linux", got)
	}
	if got := CleanLine("   "); got != "Unknown" {
		t.Fatalf("CleanLine of blank input = %q, want Unknown", got)
	}
}

func TestRecipeTailLogDefaultsTo50Lines(t *testing.T) {
	got := RecipeTailLog("/var/log/syslog", 0)
	want := "tail -n 50 '/var/log/syslog'"
	if got != want {
		t.Fatalf("RecipeTailLog = %q, want %q", got, want)
	}
}

func TestParseProcessesSkipsHeaderAndShortLines(t *testing.T) {
	raw := "USER PID %CPU %MEM VSZ RSS TTY STAT START TIME COMMAND\n" +
		"root 1 0.0 0.1 1000 100 ?        Ss   Jan01   0:01 /sbin/init\n" +
		"short line\n" +
		"alice 42 1.5 2.3 2000 300 pts/0    Sl+  10:00   0:05 /usr/bin/top -bn1\n"

	procs := ParseProcesses(raw)
	if len(procs) != 2 {
		t.Fatalf("got %d processes, want 2: %+v", len(procs), procs)
	}
	if procs[0].User != "root" || procs[0].PID != "1" || procs[0].Command != "/sbin/init" {
		t.Fatalf("unexpected first process: %+v", procs[0])
	}
	if procs[1].Command != "/usr/bin/top -bn1" {
		t.Fatalf("unexpected joined command: %q", procs[1].Command)
	}
}

func TestRecipeKillProcessDefaultsToSIGTERM(t *testing.T) {
	if got := RecipeKillProcess("123", ""); got != "kill -15 123" {
		t.Fatalf("RecipeKillProcess default = %q", got)
	}
	if got := RecipeKillProcess("123", "9"); got != "kill -9 123" {
		t.Fatalf("RecipeKillProcess explicit signal = %q", got)
	}
}
