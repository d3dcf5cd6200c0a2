package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

// Офлайн-подготовка изображений спектров: PDF -> PNG через poppler pdftoppm.
// С сервером викторины не взаимодействует.
func main() {
	root := pflag.String("root", ".", "каталог для рекурсивного поиска PDF")
	pattern := pflag.String("pattern", "MS*.pdf", "шаблон имени PDF-файла")
	dpi := pflag.Int("dpi", 500, "разрешение растеризации")
	prefix := pflag.String("prefix", "easy", "префикс имени PNG")
	out := pflag.String("out", ".", "каталог для PNG")
	pflag.Parse()

	if _, err := exec.LookPath("pdftoppm"); err != nil {
		color.Red("pdftoppm не найден в PATH: установите poppler-utils")
		os.Exit(1)
	}

	pdfs, err := findPDFs(*root, *pattern)
	if err != nil {
		color.Red("Ошибка поиска PDF: %v", err)
		os.Exit(1)
	}
	if len(pdfs) == 0 {
		color.Yellow("Не найдено файлов по шаблону %s в %s", *pattern, *root)
		return
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		color.Red("Не удалось создать каталог %s: %v", *out, err)
		os.Exit(1)
	}

	failed := 0
	for _, pdf := range pdfs {
		written, err := convert(context.Background(), pdf, *dpi, *prefix, *out)
		if err != nil {
			failed++
			color.Red("✗ %s: %v", pdf, err)
			continue
		}
		color.Green("✓ %s -> %s", pdf, strings.Join(written, ", "))
	}

	fmt.Printf("Обработано: %d, ошибок: %d\n", len(pdfs)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// findPDFs рекурсивно ищет файлы, чьё имя совпадает с pattern, в лексикографическом порядке
func findPDFs(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); ok {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// indexToken - имя файла без расширения .pdf
func indexToken(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(strings.TrimSuffix(base, ".pdf"), ".PDF")
}

// outputName возвращает имя PNG для страницы page (с 1); первая страница без суффикса
func outputName(prefix, index string, page int) string {
	if page <= 1 {
		return fmt.Sprintf("%s_%s.png", prefix, index)
	}
	return fmt.Sprintf("%s_%s_%s.png", prefix, index, strconv.Itoa(page))
}

// convert растеризует все страницы PDF во временный каталог и переименовывает их
func convert(ctx context.Context, pdf string, dpi int, prefix, outDir string) ([]string, error) {
	tmp, err := os.MkdirTemp("", "assetprep-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmp)

	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", strconv.Itoa(dpi), "-png", pdf, filepath.Join(tmp, "page"))
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, strings.TrimSpace(string(output)))
	}

	// pdftoppm дополняет номер страницы нулями, поэтому сортировка строк сохраняет порядок
	pages, err := filepath.Glob(filepath.Join(tmp, "page-*.png"))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	sort.Strings(pages)

	index := indexToken(pdf)
	written := make([]string, 0, len(pages))
	for i, page := range pages {
		target := filepath.Join(outDir, outputName(prefix, index, i+1))
		if err := moveFile(page, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

// moveFile переносит файл, в том числе между файловыми системами
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
