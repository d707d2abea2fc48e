package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/visionocr/internal/config"
	"github.com/ivlev/visionocr/internal/report"
	"github.com/ivlev/visionocr/internal/source"
	"github.com/ivlev/visionocr/pkg/visionocr"
	"golang.org/x/sync/errgroup"
)

const (
	maxBoxSize  = 256
	maxTextSize = 4096
)

// pageResult is the boundary output for one page.
type pageResult struct {
	name   string
	status visionocr.Status
	out    *visionocr.Output
	image  []byte // kept for searchable PDF output
}

func main() {
	os.Exit(run())
}

func run() int {
	log.SetFlags(0)

	clsPtr := flag.Bool("cls", false, "Классификация ориентации строк (0/180°)")
	profilesPtr := flag.String("profiles", "", "YAML-реестр дополнительных профилей")
	reportPtr := flag.String("report", "", "Путь к YAML-отчету (\"auto\": output/<имя>_<время>.yaml)")
	pdfPtr := flag.String("pdf", "", "Путь к PDF с текстовым слоем")
	timesPtr := flag.Bool("times", false, "Печатать время стадий")
	dpiPtr := flag.Int("dpi", 300, "DPI для страниц PDF")
	workersPtr := flag.Int("workers", 0, "Потоки (0 - по числу ядер и памяти)")
	logLevelPtr := flag.String("log-level", "warn", "Уровень лога: debug, info, warn, error, off")

	flag.Usage = func() { usage(*profilesPtr) }
	flag.Parse()

	profile, filename, ok := parseArgs(flag.Args())
	if !ok {
		flag.Usage()
		return 1
	}

	src, err := source.Open(filename, *dpiPtr)
	if err != nil {
		log.Printf("[-] Ошибка инициализации источника: %v", err)
		flag.Usage()
		return 1
	}
	defer src.Close()

	pageCount := src.PageCount()
	if pageCount == 0 {
		log.Printf("[-] Ошибка: в источнике нет страниц или изображений")
		return 1
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = visionocr.DefaultPoolSize()
	}
	workers = min(workers, pageCount)

	opts := config.Options{Profile: profile, ProfilesFile: *profilesPtr, LogLevel: *logLevelPtr}
	ctx := context.Background()
	pool, err := visionocr.NewPool(ctx, opts, workers)
	if err != nil {
		log.Printf("[-] Не удалось загрузить профиль %s: %v", profile, err)
		flag.Usage()
		return 1
	}
	defer pool.Close()

	keepImages := *pdfPtr != ""
	start := time.Now()
	results := make([]pageResult, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			return pool.Do(gctx, func(h *visionocr.Handle) error {
				results[i] = process(h, src, i, *clsPtr, keepImages)
				return nil
			})
		})
	}
	g.Wait()

	for _, res := range results {
		if pageCount > 1 {
			fmt.Printf("== %s ==\n", res.name)
		}
		if res.status != visionocr.Success {
			fmt.Fprintln(os.Stderr, "OCR Failed.")
			continue
		}
		for i := 0; i < res.out.Count; i++ {
			fmt.Println(formatRegion(i, res.out))
		}
		if *timesPtr {
			fmt.Println(formatTimings(res.out))
		}
	}
	if pageCount > 1 {
		log.Printf("[*] Страниц: %d | Потоков: %d | Время: %v", pageCount, workers, time.Since(start).Round(time.Millisecond))
	}

	if *reportPtr != "" {
		path, err := reportPath(*reportPtr, filename, "output")
		if err != nil {
			log.Printf("[!] Не удалось создать каталог отчета: %v", err)
		} else if err := report.Write(buildReport(filename, profile, results), path); err != nil {
			log.Printf("[!] Не удалось записать отчет: %v", err)
		} else {
			log.Printf("[*] Отчет: %s", path)
		}
	}

	if *pdfPtr != "" {
		dpi := 72
		if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
			dpi = *dpiPtr
		}
		if err := writePDF(*pdfPtr, results, dpi); err != nil {
			log.Printf("[!] Не удалось записать PDF: %v", err)
		} else {
			log.Printf("[*] PDF: %s", *pdfPtr)
		}
	}

	return 0
}

func process(h *visionocr.Handle, src source.Source, index int, useCls, keepImage bool) pageResult {
	res := pageResult{name: src.PageName(index), status: visionocr.Failure}

	data, err := src.PageBytes(index)
	if err != nil {
		log.Printf("[!] Ошибка чтения страницы %s: %v", res.name, err)
		return res
	}

	res.out = visionocr.NewOutput(maxBoxSize, maxTextSize)
	res.status = h.RunSystem(data, useCls, res.out)
	if keepImage && res.status == visionocr.Success {
		res.image = data
	}
	return res
}

// parseArgs accepts "[profile] <image file>".
func parseArgs(args []string) (profile, filename string, ok bool) {
	switch len(args) {
	case 1:
		return config.DefaultProfile, args[0], true
	case 2:
		return args[0], args[1], true
	default:
		return "", "", false
	}
}

func usage(profilesFile string) {
	reg := config.DefaultRegistry()
	if profilesFile != "" {
		if r, err := config.LoadRegistry(profilesFile); err == nil {
			reg = r
		}
	}

	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage: %s [flags] [profile] <image file>\n", filepath.Base(os.Args[0]))
	for i, p := range reg.Profiles() {
		label := "  profiles: "
		if i > 0 {
			label = "            "
		}
		fmt.Fprintf(w, "%s%-13s - %s\n", label, p.Name, p.Description)
	}
	fmt.Fprintln(w, "Flags:")
	flag.PrintDefaults()
}

func writePDF(path string, results []pageResult, dpi int) error {
	var pages []report.PDFPage
	for _, res := range results {
		if res.status != visionocr.Success {
			continue
		}
		pages = append(pages, report.PDFPage{Image: res.image, Regions: reportRegions(res.out)})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteSearchablePDF(f, pages, report.DefaultPDFOptions(dpi)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
