package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"scenariotext/scenario_tool/ptrtext"
)

func main() {
	if len(os.Args) < 2 {
		printBanner()
		printUsage()
		waitForEnter()
		return
	}

	mode := os.Args[1]
	if mode != "-e" && mode != "-r" && mode != "-s" {
		printUsage()
		os.Exit(2)
	}

	fs := flag.NewFlagSet("scenario_tool "+mode, flag.ExitOnError)
	cfgPath := fs.String("c", "scenario_tool.ini", "配置文件 / config file")
	inDir := fs.String("in", "", "输入目录 / folder with scenario.dat and textdata.dat")
	outDir := fs.String("out", "", "导出目录 / folder for the exported text")
	modDir := fs.String("mod", "", "输出目录 / folder for the repacked files")
	enc := fs.String("enc", "", "文本编码 / text encoding (shift_jis, euc-jp)")
	tbl := fs.String("tbl", "", "码表 / character table (.tbl), overrides -enc")
	quiet := fs.Bool("q", false, "只输出统计 / print the summary only")
	fs.Parse(os.Args[2:])

	//命令行参数优先于配置文件
	cfg, err := ptrtext.LoadConfig(*cfgPath)
	if err != nil {
		fail(err)
	}
	if *inDir != "" {
		cfg.InputDir = *inDir
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *modDir != "" {
		cfg.ModifiedDir = *modDir
	}
	if *enc != "" {
		cfg.Encoding = *enc
	}
	if *tbl != "" {
		cfg.Table = *tbl
	}

	p, err := ptrtext.NewPipeline(cfg, ptrtext.WithLogger(newLogger(*quiet)))
	if err != nil {
		fail(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch mode {
	case "-e":
		err = doExtract(ctx, p)
	case "-r":
		err = doRepack(ctx, p)
	case "-s":
		err = doScan(ctx, p)
	}
	if err != nil {
		stop()
		fail(err)
	}
}

func printBanner() {
	fmt.Println("=====================================")
	fmt.Println("Scenario Text Tool")
	fmt.Println("textdata.dat / scenario.dat pointer text")
	fmt.Println("=====================================")
}

func printUsage() {
	fmt.Println("\n用法 / Usage:")
	fmt.Println("  导出 / Extract: scenario_tool -e [-c scenario_tool.ini] [-in input] [-out output]")
	fmt.Println("  导入 / Repack:  scenario_tool -r [-c scenario_tool.ini] [-in input] [-out output] [-mod modified]")
	fmt.Println("  检查 / Scan:    scenario_tool -s [-in input]")
	fmt.Println("  编码 / Encoding: -enc shift_jis | euc-jp, or -tbl font.tbl")
	fmt.Println("\n这是一个命令行工具，请在终端中使用。")
	fmt.Println("This is a command-line tool, please use it in terminal.")
}

func waitForEnter() {
	fmt.Println("\n按回车键退出... / Press Enter to exit...")
	fmt.Scanln()
}

func fail(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}

// newLogger prints one key=value line per event, without timestamps.
func newLogger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(h)
}

func doExtract(ctx context.Context, p *ptrtext.Pipeline) error {
	cfg := p.Config()
	//输出目录在这里建，库里不建
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}

	res, err := p.Extract(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nExtraction finished: %d strings saved to '%s'\n", res.Strings, res.Path)
	fmt.Printf("  records: %d, pointers: %d, codec: %s\n", res.Records, res.Slots, p.Codec().Name())
	fmt.Printf("  %s (%d bytes)\n", res.Digest, res.Size)
	return nil
}

func doRepack(ctx context.Context, p *ptrtext.Pipeline) error {
	cfg := p.Config()
	if err := os.MkdirAll(cfg.ModifiedDir, 0755); err != nil {
		return err
	}

	res, err := p.Repack(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\n导入完成 / Repack complete.\n")
	fmt.Printf("成功 / Replaced: %d\n", res.Replaced)
	fmt.Printf("移动 / Relocated: %d (+%d bytes)\n", res.Relocated, res.Appended)
	fmt.Printf("跳过 / Skipped: %d\n", res.Skipped+len(res.Anomalies))
	if res.Kept > 0 {
		fmt.Printf("保留 / Kept (decode errors): %d\n", res.Kept)
	}
	if res.Dropped > 0 {
		fmt.Printf("丢弃字符 / Dropped characters: %d\n", res.Dropped)
	}

	fmt.Printf("New %s: %s\n  %s%s\n", cfg.TextFile, res.TextPath, res.TextDigest, unchanged(res.TextChanged))
	fmt.Printf("New %s: %s\n  %s%s\n", cfg.PointerFile, res.PointerPath, res.PointerDigest, unchanged(res.PointersChanged))
	return nil
}

func unchanged(changed bool) string {
	if changed {
		return ""
	}
	return " (unchanged)"
}

func doScan(ctx context.Context, p *ptrtext.Pipeline) error {
	r, err := p.Scan(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("text:     %d bytes, %d records\n", r.TextSize, r.Records)
	fmt.Printf("pointers: %d bytes, %d slots", r.PointerSize, r.Slots)
	if r.Trailing > 0 {
		fmt.Printf(" (+%d trailing bytes ignored)", r.Trailing)
	}
	fmt.Println()
	fmt.Printf("  on a record start: %d (%d strings, %d shared)\n", r.Valid, r.Targets, r.FanIn)
	fmt.Printf("  inside the text:   %d\n", r.MidString)
	fmt.Printf("  past the text:     %d\n", r.OutOfRange)
	return nil
}
