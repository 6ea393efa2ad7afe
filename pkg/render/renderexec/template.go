package renderexec

import (
	"context"
	"fmt"
	"path"

	"github.com/Abraxas-365/fittsee/pkg/fsx"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/Abraxas-365/fittsee/pkg/render"
)

// TemplateExecutor stands in for a real renderer: it copies a fixed template
// video to a per-job path in the file store.
type TemplateExecutor struct {
	files        fsx.FileSystem
	templatePath string
	outputDir    string
	publicBase   string
}

func NewTemplateExecutor(files fsx.FileSystem, templatePath, outputDir, publicBase string) *TemplateExecutor {
	return &TemplateExecutor{
		files:        files,
		templatePath: templatePath,
		outputDir:    outputDir,
		publicBase:   publicBase,
	}
}

// Render returns the public URL of renders/<job_id>.mp4
func (e *TemplateExecutor) Render(ctx context.Context, req render.Request) (string, error) {
	output := path.Join(e.outputDir, req.JobID.String()+".mp4")
	log := logx.WithFields(logx.Fields{
		"job_id":   req.JobID,
		"template": e.templatePath,
		"output":   output,
	})
	log.Info("starting render")

	ok, err := e.files.Exists(ctx, e.templatePath)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("template file not found at %s", e.templatePath)
	}

	if err := e.files.Copy(ctx, e.templatePath, output); err != nil {
		return "", err
	}

	log.Info("render complete")
	return fsx.PublicURL(e.publicBase, output), nil
}
