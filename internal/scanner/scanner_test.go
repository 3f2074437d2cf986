package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fenilsonani/winsweep/internal/classifier"
	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/testutil"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

func newTestScanner(f *testutil.TestFixture, sys platform.System, mutate func(*config.Config)) *Scanner {
	cfg := config.GetDefault()
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg, f.Env(), sys, nil)
}

func drain(events <-chan Event) []Event {
	var all []Event
	for ev := range events {
		all = append(all, ev)
	}
	return all
}

func findingsOf(events []Event) []Finding {
	var out []Finding
	for _, ev := range events {
		if ev.Kind == EventItem {
			out = append(out, *ev.Finding)
		}
	}
	return out
}

func assertSingleDoneLast(t *testing.T, events []Event) {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("stream produced no events")
	}
	done := 0
	for _, ev := range events {
		if ev.Kind == EventDone {
			done++
		}
	}
	if done != 1 {
		t.Errorf("got %d Done events, want 1", done)
	}
	if last := events[len(events)-1]; last.Kind != EventDone {
		t.Errorf("last event is %s, want done", last.Kind)
	}
}

// =============================================================================
// SizeOf Tests
// =============================================================================

func TestSizeOf(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("data/a.bin", 10)
	f.CreateSizedFile("data/sub/b.bin", 20)
	f.CreateSizedFile("data/sub/deeper/c.bin", 30)
	f.CreateDir("data/empty")

	tests := []struct {
		name string
		path string
		want int64
	}{
		{"directory tree", f.Path("data"), 60},
		{"subdirectory", f.Path("data/sub"), 50},
		{"regular file", f.Path("data/a.bin"), 10},
		{"empty directory", f.Path("data/empty"), 0},
		{"missing path", f.Path("nope"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SizeOf(tt.path); got != tt.want {
				t.Errorf("SizeOf(%s) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestSizeOfDoesNotFollowSymlinks(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("outside/big.bin", 1000)
	f.CreateSizedFile("data/small.bin", 5)
	f.CreateSymlink(f.Path("outside"), "data/link")

	if got := SizeOf(f.Path("data")); got != 5 {
		t.Errorf("SizeOf = %d, want 5 (link target must not be counted)", got)
	}
}

func TestSizeOfSkipsUnreadableSubdir(t *testing.T) {
	testutil.SkipIfRoot(t)
	testutil.SkipOnWindows(t)

	f := testutil.NewFixture(t)
	f.CreateSizedFile("data/readable.bin", 40)
	f.CreateUnreadableDir("data/locked", 1000)

	if got := SizeOf(f.Path("data")); got != 40 {
		t.Errorf("SizeOf = %d, want 40", got)
	}
}

func TestSizeOfContextCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	for i := 0; i < 5; i++ {
		f.CreateSizedFile(filepath.Join("data", string(rune('a'+i))+".bin"), 10)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := SizeOfContext(ctx, f.Path("data")); got != 0 {
		t.Errorf("SizeOfContext on cancelled ctx = %d, want 0", got)
	}
}

// =============================================================================
// Traverser Tests
// =============================================================================

func TestTraverserStopsAtJunkRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("vendor/Cache/a")
	f.CreateDir("vendor/Cache/b/Logs")
	f.CreateDir("vendor/Cache/c")

	var examined []string
	isJunk := func(name string) bool {
		examined = append(examined, name)
		return classifier.IsJunkName(name)
	}

	roots := FindJunkRoots(context.Background(), f.Path("vendor"), 3, isJunk)
	if len(roots) != 1 || roots[0] != f.Path("vendor/Cache") {
		t.Fatalf("roots = %v, want only vendor/Cache", roots)
	}
	for _, name := range examined {
		switch name {
		case "a", "b", "c", "Logs":
			t.Errorf("examined %q beneath a junk root", name)
		}
	}
}

func TestTraverserDepthLimit(t *testing.T) {
	tests := []struct {
		name  string
		dir   string
		found bool
	}{
		{"depth 1", "vendor/Cache", true},
		{"depth 2", "vendor/a/Cache", true},
		{"depth 3", "vendor/a/b/Cache", true},
		{"depth 4", "vendor/a/b/c/Cache", false},
		{"depth 5", "vendor/a/b/c/d/Cache", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			f.CreateDir(tt.dir)

			roots := FindJunkRoots(context.Background(), f.Path("vendor"), DefaultDepthLimit, classifier.IsJunkName)
			if got := len(roots) == 1; got != tt.found {
				t.Errorf("found = %v (%v), want %v", got, roots, tt.found)
			}
		})
	}
}

func TestTraverserVendorFolderIsJunk(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("Temp/inner/Cache")

	roots := FindJunkRoots(context.Background(), f.Path("Temp"), 3, classifier.IsJunkName)
	if len(roots) != 1 || roots[0] != f.Path("Temp") {
		t.Errorf("roots = %v, want the vendor folder itself", roots)
	}
}

func TestTraverserPreOrder(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("vendor/a/Cache")
	f.CreateDir("vendor/a/x/Logs")
	f.CreateDir("vendor/b/Temp")

	roots := FindJunkRoots(context.Background(), f.Path("vendor"), 3, classifier.IsJunkName)
	want := []string{f.Path("vendor/a/Cache"), f.Path("vendor/a/x/Logs"), f.Path("vendor/b/Temp")}
	if len(roots) != len(want) {
		t.Fatalf("roots = %v, want %v", roots, want)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("roots[%d] = %s, want %s", i, roots[i], want[i])
		}
	}
}

func TestTraverserSkipsDangerNames(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("vendor/Profile/Save")
	f.CreateDir("vendor/cache_profile")

	roots := FindJunkRoots(context.Background(), f.Path("vendor"), 3, classifier.IsJunkName)
	if len(roots) != 0 {
		t.Errorf("roots = %v, want none", roots)
	}
}

// =============================================================================
// Pool Tests
// =============================================================================

func TestRunPoolProcessesEveryJob(t *testing.T) {
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	var sum atomic.Int64
	var maxDone atomic.Int64
	runPool(context.Background(), 8, jobs, func(_ context.Context, n int) {
		sum.Add(int64(n))
	}, func(done int) {
		for {
			cur := maxDone.Load()
			if int64(done) <= cur || maxDone.CompareAndSwap(cur, int64(done)) {
				return
			}
		}
	})

	if sum.Load() != 4950 {
		t.Errorf("sum = %d, want 4950", sum.Load())
	}
	if maxDone.Load() != 100 {
		t.Errorf("completed = %d, want 100", maxDone.Load())
	}
}

func TestRunPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Int64
	runPool(ctx, 2, make([]int, 50), func(context.Context, int) { ran.Add(1) }, nil)

	if ran.Load() >= 50 {
		t.Errorf("ran %d jobs after cancellation", ran.Load())
	}
}

// =============================================================================
// Stream Tests
// =============================================================================

func TestScanEmptyRoots(t *testing.T) {
	root := t.TempDir()
	env := &platform.Env{
		UserProfile:    filepath.Join(root, "missing"),
		LocalAppData:   filepath.Join(root, "missing", "Local"),
		RoamingAppData: filepath.Join(root, "missing", "Roaming"),
	}
	s := New(config.GetDefault(), env, nil, nil)

	for _, mode := range []Mode{ModeAppData, ModeInstallers, ModeLargeFiles, ModeDuplicates, ModeCustom} {
		t.Run(string(mode), func(t *testing.T) {
			events := drain(s.Scan(context.Background(), mode))
			if n := len(findingsOf(events)); n != 0 {
				t.Errorf("got %d items, want 0", n)
			}
			assertSingleDoneLast(t, events)
		})
	}
}

func TestScanUnknownMode(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestScanner(f, nil, nil)

	events := drain(s.Scan(context.Background(), Mode("bogus")))
	assertSingleDoneLast(t, events)
	if events[0].Kind != EventStatus {
		t.Errorf("first event = %s, want status", events[0].Kind)
	}
}

func TestScanCancelledTerminates(t *testing.T) {
	f := testutil.NewFixture(t)
	for i := 0; i < 20; i++ {
		f.CreateSizedFile(filepath.Join("Users/alice/AppData/Local", "Vendor"+string(rune('A'+i)), "Cache", "x.bin"), 10)
	}
	s := newTestScanner(f, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finished := make(chan struct{})
	go func() {
		drain(s.Scan(ctx, ModeAppData))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled scan did not close its stream")
	}
}

func TestScanProgressEvents(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("Users/alice/AppData/Local/Vendor1/Cache/a.bin", 10)
	s := newTestScanner(f, nil, nil)

	events := drain(s.Scan(context.Background(), ModeAppData))

	var last *Event
	for i := range events {
		if events[i].Kind == EventProgress {
			last = &events[i]
		}
	}
	if last == nil {
		t.Fatal("no progress events")
	}
	if last.Current != last.Total {
		t.Errorf("final progress = %d/%d, want equal", last.Current, last.Total)
	}
}

func TestScanModesSingleDone(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("Users/alice/AppData/Local/Vendor1/Cache/a.bin", 10)
	f.CreateSizedFile("Users/alice/AppData/Local/Temp/t.bin", 20)
	s := newTestScanner(f, nil, nil)

	events := drain(s.ScanModes(context.Background(), []Mode{ModeSystemJunk, ModeAppData}))
	assertSingleDoneLast(t, events)

	modes := make(map[Mode]bool)
	for _, fd := range findingsOf(events) {
		modes[fd.Mode] = true
	}
	if !modes[ModeSystemJunk] || !modes[ModeAppData] {
		t.Errorf("findings from modes %v, want both", modes)
	}
}

func TestScanModesReportsTempOnce(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("Users/alice/AppData/Local/Temp/t.bin", 4096)
	f.CreateSizedFile("Users/alice/AppData/Local/Temp/Cache/c.bin", 100)
	f.CreateSizedFile("Users/alice/AppData/Local/Vendor1/Cache/a.bin", 10)
	s := newTestScanner(f, nil, nil)

	findings := findingsOf(drain(s.ScanModes(context.Background(), []Mode{ModeSystemJunk, ModeAppData})))

	var temp []Finding
	for _, fd := range findings {
		if fd.Path == f.Temp || strings.HasPrefix(fd.Path, f.Temp+string(filepath.Separator)) {
			temp = append(temp, fd)
		}
	}
	if len(temp) != 1 {
		t.Fatalf("got %d findings in %%TEMP%%, want 1: %+v", len(temp), temp)
	}
	if temp[0].Mode != ModeSystemJunk || temp[0].Category != CategorySystem {
		t.Errorf("temp finding = %+v, want system junk", temp[0])
	}
	if got, want := TotalSize(findings), int64(4096+100+10); got != want {
		t.Errorf("TotalSize = %d, want %d", got, want)
	}
}

func TestCoveredBy(t *testing.T) {
	reported := map[string]bool{pathKey("/data/temp"): true}
	tests := []struct {
		path string
		want bool
	}{
		{"/data/temp", true},
		{"/data/TEMP/sub/x", true},
		{"/data/temporary", false},
		{"/data", false},
	}
	for _, tt := range tests {
		if got := coveredBy(reported, pathKey(tt.path)); got != tt.want {
			t.Errorf("coveredBy(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCollect(t *testing.T) {
	ch := make(chan Event, 4)
	ch <- Event{Kind: EventStatus, Message: "x"}
	ch <- Event{Kind: EventItem, Finding: &Finding{Path: "a", Size: 1}}
	ch <- Event{Kind: EventItem, Finding: &Finding{Path: "b", Size: 2}}
	ch <- Event{Kind: EventDone}
	close(ch)

	got := Collect(ch)
	if len(got) != 2 || got[0].Path != "a" || got[1].Path != "b" {
		t.Errorf("Collect = %+v", got)
	}
}

// =============================================================================
// Mode Tests
// =============================================================================

func TestScanAppData(t *testing.T) {
	f := testutil.NewFixture(t)
	cache := f.CreateDir("Users/alice/AppData/Local/Vendor1/Cache")
	f.CreateSizedFile("Users/alice/AppData/Local/Vendor1/Cache/blob.bin", 50*utils.MB)
	f.CreateSizedFile("Users/alice/AppData/Local/Vendor1/Profile/Save/slot1.sav", 1000)
	f.CreateSizedFile("Users/alice/AppData/Roaming/SomeTool/Crashpad/report.dmp", 300)
	s := newTestScanner(f, nil, nil)

	events := drain(s.Scan(context.Background(), ModeAppData))
	assertSingleDoneLast(t, events)

	got := findingsOf(events)
	sort.Slice(got, func(i, j int) bool { return got[i].Path < got[j].Path })
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(got), got)
	}

	var vendor, crash Finding
	for _, fd := range got {
		if fd.Path == cache {
			vendor = fd
		} else {
			crash = fd
		}
	}

	if vendor.Size != 50*utils.MB {
		t.Errorf("vendor size = %d, want %d", vendor.Size, 50*utils.MB)
	}
	if vendor.Category != classifier.CategoryApplication || vendor.Software != "Vendor1" {
		t.Errorf("vendor classified as %s/%s", vendor.Category, vendor.Software)
	}
	if vendor.Detail != "Cache" || vendor.Mode != ModeAppData {
		t.Errorf("vendor detail/mode = %s/%s", vendor.Detail, vendor.Mode)
	}

	if crash.Category != classifier.CategoryLogs || crash.Software != "SomeTool" {
		t.Errorf("crashpad classified as %s/%s", crash.Category, crash.Software)
	}
	if crash.Detail != "Crashpad" || crash.Size != 300 {
		t.Errorf("crashpad detail/size = %s/%d", crash.Detail, crash.Size)
	}
}

func TestScanAppDataDropsEmptyJunk(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateDir("Users/alice/AppData/Local/Vendor1/Cache")
	s := newTestScanner(f, nil, nil)

	if got := Collect(s.Scan(context.Background(), ModeAppData)); len(got) != 0 {
		t.Errorf("got %d findings for empty cache, want 0", len(got))
	}
}

func TestScanIsRepeatable(t *testing.T) {
	f := testutil.NewFixture(t)
	for _, v := range []string{"A", "B", "C", "D"} {
		f.CreateSizedFile("Users/alice/AppData/Local/Vendor"+v+"/Cache/x.bin", 100)
		f.CreateSizedFile("Users/alice/AppData/Roaming/Vendor"+v+"/logs/y.log", 10)
	}
	s := newTestScanner(f, nil, nil)

	keys := func(fs []Finding) []string {
		var out []string
		for _, fd := range fs {
			out = append(out, fd.Path)
		}
		sort.Strings(out)
		return out
	}

	var wg sync.WaitGroup
	results := make([][]string, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = keys(Collect(s.Scan(context.Background(), ModeAppData)))
		}(i)
	}
	wg.Wait()

	if len(results[0]) != 8 {
		t.Fatalf("got %d findings, want 8", len(results[0]))
	}
	for i := 1; i < len(results); i++ {
		if len(results[i]) != len(results[0]) {
			t.Fatalf("run %d found %d, run 0 found %d", i, len(results[i]), len(results[0]))
		}
		for j := range results[0] {
			if results[i][j] != results[0][j] {
				t.Errorf("run %d differs at %d: %s vs %s", i, j, results[i][j], results[0][j])
			}
		}
	}
}

func TestScanSystemJunk(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("Users/alice/AppData/Local/Temp/setup.tmp", 20)
	f.CreateSizedFile("Windows/Prefetch/APP.pf", 30)
	f.CreateSizedFile("D/$Recycle.Bin/S-1-5/$R1.txt", 5)
	sys := testutil.NewFakeSystem(f.Path("D"))
	s := newTestScanner(f, sys, nil)

	events := drain(s.Scan(context.Background(), ModeSystemJunk))
	assertSingleDoneLast(t, events)

	byPath := make(map[string]Finding)
	for _, fd := range findingsOf(events) {
		byPath[fd.Path] = fd
	}

	if bin, ok := byPath[platform.SentinelRecycleBin]; !ok || bin.Size != 5 {
		t.Errorf("recycle bin finding = %+v, want size 5", bin)
	}
	if tmp := byPath[f.Temp]; tmp.Size != 20 || tmp.Category != CategorySystem {
		t.Errorf("temp finding = %+v", tmp)
	}
	if pf := byPath[filepath.Join(f.SystemRoot, "Prefetch")]; pf.Size != 30 {
		t.Errorf("prefetch finding = %+v", pf)
	}
	if len(byPath) != 3 {
		t.Errorf("got %d findings, want 3", len(byPath))
	}
}

func TestScanCustom(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("proj/build/cache/x.bin", 10)
	f.CreateSizedFile("proj/src/main.go", 99)
	s := newTestScanner(f, nil, func(c *config.Config) {
		c.CustomPaths = []string{f.Path("proj"), f.Path("proj"), f.Path("gone")}
	})

	got := Collect(s.Scan(context.Background(), ModeCustom))
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1: %+v", len(got), got)
	}
	fd := got[0]
	if fd.Category != CategoryCustom || fd.Software != "proj" || fd.Size != 10 {
		t.Errorf("finding = %+v", fd)
	}
	if fd.Detail != filepath.Join("build", "cache") {
		t.Errorf("detail = %s", fd.Detail)
	}
}

func TestScanAccounts(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("D/Data/WeChat Files/wxid_one/Msg/chat.db", 100)
	f.CreateSizedFile("D/Data/WeChat Files/wxid_two/FileStorage/a.jpg", 50)
	f.CreateSizedFile("D/Data/WeChat Files/All Users/config/global.ini", 10)
	f.CreateSizedFile("D/Windows/WeChat Files/wxid_hidden/x", 10)
	f.CreateSizedFile("Users/alice/Documents/Tencent Files/12345/Image/p.png", 70)

	sys := testutil.NewFakeSystem()
	sys.SetRegistry(`Software\Tencent\WeChat`, "FileSavePath", "MyDocument:")
	s := newTestScanner(f, sys, func(c *config.Config) {
		c.Scan.DriveRoots = []string{f.Path("D")}
	})

	events := drain(s.Scan(context.Background(), ModeAccounts))
	assertSingleDoneLast(t, events)

	got := make(map[string]Finding)
	for _, fd := range findingsOf(events) {
		got[fd.Detail] = fd
	}

	if len(got) != 3 {
		t.Fatalf("got accounts %v, want wxid_one, wxid_two and 12345", got)
	}
	if fd := got["wxid_one"]; fd.Software != "WeChat" || fd.Size != 100 || fd.Category != CategoryAccounts {
		t.Errorf("wxid_one = %+v", fd)
	}
	if fd := got["12345"]; fd.Software != "QQ" || fd.Size != 70 {
		t.Errorf("12345 = %+v", fd)
	}
	if _, ok := got["All Users"]; ok {
		t.Error("denylisted folder reported")
	}
	if _, ok := got["wxid_hidden"]; ok {
		t.Error("excluded top folder searched")
	}
}

func TestScanAccountsRegistryPath(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("custom/WeChat Files/wxid_reg/a.bin", 42)

	sys := testutil.NewFakeSystem()
	sys.SetRegistry(`Software\Tencent\WeChat`, "FileSavePath", f.Path("custom"))
	s := newTestScanner(f, sys, nil)

	got := Collect(s.Scan(context.Background(), ModeAccounts))
	if len(got) != 1 || got[0].Detail != "wxid_reg" || got[0].Size != 42 {
		t.Errorf("got %+v, want wxid_reg", got)
	}
}

func TestLooksLikePath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"MyDocument:", false},
		{"", false},
		{`D:\Data`, true},
		{"relative", false},
	}
	for _, tt := range tests {
		if got := looksLikePath(tt.in); got != tt.want {
			t.Errorf("looksLikePath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestScanInstallers(t *testing.T) {
	f := testutil.NewFixture(t)
	old := f.CreateFileWithAge("Users/alice/Downloads/setup.exe", make([]byte, 64), 40*24*time.Hour)
	f.CreateFileWithAge("Users/alice/Downloads/fresh.msi", make([]byte, 64), 24*time.Hour)
	f.CreateFileWithAge("Users/alice/Downloads/notes.txt", make([]byte, 64), 40*24*time.Hour)
	f.CreateFileWithAge("Users/alice/Downloads/nested/old.zip", make([]byte, 64), 40*24*time.Hour)
	f.CreateFileWithAge("Users/alice/Downloads/ARCHIVE.7Z", make([]byte, 32), 90*24*time.Hour)
	s := newTestScanner(f, nil, nil)

	got := Collect(s.Scan(context.Background(), ModeInstallers))
	sort.Slice(got, func(i, j int) bool { return got[i].Path < got[j].Path })
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(got), got)
	}

	fd := got[1]
	if fd.Path != old || fd.Software != "setup.exe" || fd.Size != 64 {
		t.Errorf("finding = %+v", fd)
	}
	info, _ := os.Stat(old)
	if want := info.ModTime().Format(installerDateFormat); fd.Date != want || fd.Detail != want {
		t.Errorf("date = %s/%s, want %s", fd.Date, fd.Detail, want)
	}
}

func TestScanLargeFiles(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateSizedFile("Users/alice/Downloads/small.bin", 512)
	f.CreateSizedFile("Users/alice/Downloads/two.bin", 2048)
	f.CreateSizedFile("Users/alice/Documents/deep/four.bin", 4096)
	f.CreateSizedFile("Users/alice/Downloads/three.bin", 3072)
	f.CreateSizedFile("Users/alice/Downloads/.hidden/huge.bin", 9999)
	s := newTestScanner(f, nil, func(c *config.Config) {
		c.Scan.LargeFileThreshold = 1024
		c.Scan.LargeFileLimit = 2
	})

	got := Collect(s.Scan(context.Background(), ModeLargeFiles))
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2", len(got))
	}
	if got[0].Size != 4096 || got[1].Size != 3072 {
		t.Errorf("sizes = %d, %d; want 4096, 3072", got[0].Size, got[1].Size)
	}
	if got[0].Detail != filepath.Join("Documents", "deep") {
		t.Errorf("detail = %s", got[0].Detail)
	}
}

func TestScanDuplicates(t *testing.T) {
	f := testutil.NewFixture(t)
	content := make([]byte, 2048)
	for i := range content {
		content[i] = byte(i)
	}
	older := f.CreateFile("Users/alice/Documents/a.bin", content)
	newer := f.CreateFile("Users/alice/Downloads/b.bin", content)
	f.CreateRandomFile("Users/alice/Documents/c.bin", 2048)
	f.CreateFile("Users/alice/Documents/tiny1.txt", []byte("x"))
	f.CreateFile("Users/alice/Documents/tiny2.txt", []byte("x"))

	now := time.Now()
	f.Touch(older, now.Add(-48*time.Hour))
	f.Touch(newer, now.Add(-time.Hour))

	s := newTestScanner(f, nil, nil)
	got := Collect(s.Scan(context.Background(), ModeDuplicates))
	if len(got) != 2 {
		t.Fatalf("got %d findings, want 2: %+v", len(got), got)
	}

	var keep, dup *Finding
	for i := range got {
		switch got[i].Mark {
		case MarkKeep:
			keep = &got[i]
		case MarkDuplicate:
			dup = &got[i]
		}
	}
	if keep == nil || dup == nil {
		t.Fatalf("marks = %s, %s", got[0].Mark, got[1].Mark)
	}
	if keep.Path != newer || dup.Path != older {
		t.Errorf("keep = %s, duplicate = %s", keep.Path, dup.Path)
	}
	if keep.Group == "" || keep.Group != dup.Group {
		t.Errorf("groups = %q, %q", keep.Group, dup.Group)
	}
}

func TestScanPrivacy(t *testing.T) {
	f := testutil.NewFixture(t)
	ssh := f.CreateSizedFile("Users/alice/.ssh/id_ed25519", 400)
	f.CreateSizedFile("Users/alice/AppData/Local/Google/Chrome/User Data/Default/Login Data", 100)
	f.CreateSizedFile("Users/alice/AppData/Local/Microsoft/Edge/User Data/Default/Preferences", 100)
	f.CreateSizedFile("Users/alice/AppData/Roaming/Mozilla/Firefox/Profiles/x.default/logins.json", 50)
	f.CreateSizedFile("Users/alice/.bash_history", 30)

	s := newTestScanner(f, testutil.NewFakeSystem(), nil)
	events := drain(s.Scan(context.Background(), ModePrivacy))
	assertSingleDoneLast(t, events)

	byName := make(map[string]Finding)
	for _, fd := range findingsOf(events) {
		byName[fd.Software] = fd
	}

	if fd := byName["SSH keys"]; fd.Size != 400 || fd.Path != filepath.Dir(ssh) {
		t.Errorf("ssh = %+v", fd)
	}
	if _, ok := byName["Google Chrome"]; !ok {
		t.Error("chrome profile with Login Data not reported")
	}
	if _, ok := byName["Microsoft Edge"]; ok {
		t.Error("edge profile without a credential store reported")
	}
	if fd := byName["Firefox"]; fd.Size != 50 {
		t.Errorf("firefox = %+v", fd)
	}
	if fd := byName["Bash"]; fd.Size != 30 || fd.Category != CategoryPrivacyHistory {
		t.Errorf("bash = %+v", fd)
	}

	sentinels := 0
	for _, fd := range byName {
		if fd.IsSentinel() {
			sentinels++
			if fd.Size != config.GetDefault().Clean.SentinelSize.Int64() {
				t.Errorf("sentinel %s size = %d", fd.Path, fd.Size)
			}
		}
	}
	if sentinels != 3 {
		t.Errorf("got %d sentinels, want 3", sentinels)
	}
}

// =============================================================================
// Mode parsing
// =============================================================================

func TestParseMode(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(" " + string(m) + " ")
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMode("everything"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseModes(t *testing.T) {
	modes, err := ParseModes([]string{"system-junk", "privacy-sweep"})
	if err != nil || len(modes) != 2 {
		t.Fatalf("ParseModes = %v, %v", modes, err)
	}
	if _, err := ParseModes([]string{"system-junk", "nope"}); err == nil {
		t.Error("expected error")
	}
}

func TestGroupByCategory(t *testing.T) {
	findings := []Finding{
		{Category: "a", Size: 1},
		{Category: "b", Size: 2},
		{Category: "a", Size: 3},
	}
	grouped := GroupByCategory(findings)
	if len(grouped["a"]) != 2 || len(grouped["b"]) != 1 {
		t.Errorf("grouped = %v", grouped)
	}
	if TotalSize(findings) != 6 {
		t.Errorf("TotalSize = %d", TotalSize(findings))
	}
}
