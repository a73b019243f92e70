package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/EpRen/internal/app/run"
	"github.com/John-Robertt/EpRen/internal/config"
	"github.com/John-Robertt/EpRen/internal/domain"
	"github.com/John-Robertt/EpRen/internal/provider"
	"github.com/John-Robertt/EpRen/internal/provider/imdb"
	"github.com/John-Robertt/EpRen/internal/tui"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	case "tui":
		if code := tuiCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "未知命令：%q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return 1
	}
	cwdAbs, _ := filepath.Abs(cwd)

	eff, err := config.LoadEffective(cwd, ra.CLIArgs)
	if err != nil {
		emitReport(reportForConfigError(cwdAbs, ra, err))
		return 1
	}

	reg, e := provider.NewRegistry(imdb.Provider{})
	if e != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", e)
		return 1
	}

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	var confirmer run.Confirmer
	if interactive {
		ui := newPlanUI(progressW, os.Stdin)
		obs = ui
		// --yes（或配置 yes=true）跳过确认；非交互环境同样视为同意。
		if !eff.Yes {
			confirmer = ui
		}
	}

	rr := run.Execute(context.Background(), eff, reg, obs, confirmer)

	emitReport(rr)
	if interactive && eff.Apply {
		fmt.Fprintf(progressW, "report: %s\n", filepath.Join(eff.Path, run.ReportFileName))
	}
	if rr.Summary.Failed == 0 && rr.Summary.Unmatched == 0 {
		return 0
	}
	return 1
}

func tuiCmd(args []string) int {
	path := ""
	for _, a := range args {
		if isHelp(a) {
			printTUIUsage()
			return 0
		}
		if strings.HasPrefix(a, "-") {
			fmt.Fprintf(os.Stderr, "未知参数 %q\n\n", a)
			printTUIUsage()
			return 2
		}
		path = a
	}

	reg, err := provider.NewRegistry(imdb.Provider{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化 provider registry 失败：%v\n", err)
		return 1
	}
	if err := tui.Run(path, reg); err != nil {
		fmt.Fprintf(os.Stderr, "tui 退出：%v\n", err)
		return 1
	}
	return 0
}

type runArgs struct {
	config.CLIArgs
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	takeValue := func(name string, i *int) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s 需要一个值", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--season":
			v, err := takeValue("--season", &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Season, ra.SeasonSet = v, true
		case strings.HasPrefix(a, "--season="):
			ra.Season, ra.SeasonSet = strings.TrimPrefix(a, "--season="), true
		case a == "--year":
			v, err := takeValue("--year", &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Year, ra.YearSet = v, true
		case strings.HasPrefix(a, "--year="):
			ra.Year, ra.YearSet = strings.TrimPrefix(a, "--year="), true
		case a == "--imdb":
			v, err := takeValue("--imdb", &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.IMDbID, ra.IMDbIDSet = v, true
		case strings.HasPrefix(a, "--imdb="):
			ra.IMDbID, ra.IMDbIDSet = strings.TrimPrefix(a, "--imdb="), true
		case a == "--provider":
			v, err := takeValue("--provider", &i)
			if err != nil {
				return runArgs{}, err
			}
			ra.Provider, ra.ProviderSet = v, true
		case strings.HasPrefix(a, "--provider="):
			ra.Provider, ra.ProviderSet = strings.TrimPrefix(a, "--provider="), true
		case a == "--movie":
			ra.MediaType, ra.MediaTypeSet = "movie", true
		case a == "--apply":
			ra.Apply, ra.ApplySet = true, true
		case strings.HasPrefix(a, "--apply="):
			v := strings.TrimPrefix(a, "--apply=")
			switch v {
			case "true":
				ra.Apply = true
			case "false":
				ra.Apply = false
			default:
				return runArgs{}, fmt.Errorf("--apply 只能是 true 或 false，实际是 %q", v)
			}
			ra.ApplySet = true
		case a == "--yes" || a == "-y":
			ra.Yes, ra.YesSet = true, true
		case strings.HasPrefix(a, "-"):
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		default:
			if ra.Path != "" {
				return runArgs{}, fmt.Errorf("重复的 path：%q 与 %q", ra.Path, a)
			}
			ra.Path = a
		}
	}

	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `用法：
  epren run [path] [flags]
  epren tui [path]

命令：
  run    批量重命名（默认 dry-run）
  tui    全屏交互界面

使用 "epren run --help" 查看详细说明。
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `用法：
  epren run [path] [flags]

参数：
  --season    季号：S04 / s4 / 4（未指定时读配置文件，再尝试从目录名推断）
  --year      年份（4 位），追加到新文件名尾部
  --imdb      IMDb 剧集 ID（如 tt0944947）：用站点集标题替换文件名派生标题
  --provider  集标题站点（当前只有 imdb）
  --movie     电影模式：没有季/集标记，只规范化标题
  --apply     执行重命名（默认 dry-run）；支持 --apply=false 覆盖配置中的 apply=true
  --yes, -y   跳过执行前确认
  -h, --help  显示帮助
`)
}

func printTUIUsage() {
	fmt.Fprint(os.Stdout, `用法：
  epren tui [path]

全屏交互界面：逐项填写目录/季号/年份/IMDb ID，预览并确认重命名计划。
`)
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "完成：renamed=%d planned=%d skipped=%d failed=%d unmatched=%d\n",
			rr.Summary.Renamed, rr.Summary.Planned, rr.Summary.Skipped, rr.Summary.Failed, rr.Summary.Unmatched,
		)
		if rr.Summary.Failed > 0 || rr.Summary.Unmatched > 0 {
			for _, it := range rr.Items {
				if it.Status != domain.StatusFailed && it.Status != domain.StatusUnmatched {
					continue
				}
				key := it.Old
				if key == "" {
					key = "<run>"
				}
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "完成：renamed=%d planned=%d skipped=%d failed=%d unmatched=%d\n",
		rr.Summary.Renamed, rr.Summary.Planned, rr.Summary.Skipped, rr.Summary.Failed, rr.Summary.Unmatched,
	)
}

func reportForConfigError(cwdAbs string, ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Path:        cwdAbs,
		DryRun:      !(ra.ApplySet && ra.Apply),
		TitleSource: "filename",
		StartedAt:   now,
		FinishedAt:  now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(os.Stderr) {
		return os.Stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(os.Stdout) {
		return os.Stdout, true
	}
	return nil, false
}
