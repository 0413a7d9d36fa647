package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/orca/pkg/catalog"
)

// WatchCatalog reloads the catalog at path every time its files change and
// reports the result, until ctx is cancelled. It serves catalog authoring:
// a broken edit is reported and the watcher waits for the next one.
func WatchCatalog(ctx context.Context, path string, out io.Writer) error {
	changes, err := catalog.Watch(ctx, path)
	if err != nil {
		return fmt.Errorf("error watching catalog: %w", err)
	}
	reportCatalog(ctx, path, out)

	for {
		select {
		case <-ctx.Done():
			printSystemMessage(out, "İzleme durduruldu.")
			return nil
		case id, ok := <-changes:
			if !ok {
				printSystemMessage(out, "İzleme durduruldu.")
				return nil
			}
			printSystemMessage(out, "Değişiklik algılandı: %s", id)
			reportCatalog(ctx, path, out)
		}
	}
}

func reportCatalog(ctx context.Context, path string, out io.Writer) {
	cat, err := catalog.Load(ctx, path)
	if err != nil {
		printSystemMessage(out, "Katalog hatalı: %v", err)
		return
	}
	printSystemMessage(out, "Katalog yüklendi: %d kategori", cat.Len())
	for _, c := range cat.All() {
		fmt.Fprintf(out, "  %s %-10s %s (%d alt kategori)\n", c.Icon, c.Key, c.Name, len(c.Subcategories))
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(out io.Writer, format string, args ...any) {
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, ">>> %s\n", fmt.Sprintf(format, args...))
}
