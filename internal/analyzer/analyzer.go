// Package analyzer composes the archive reader, manifest interpreter,
// file classifier and assessment extraction pipeline into one
// PackageAnalysis per archive.
package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/scorminspect/internal/scorm"
	"github.com/mind-engage/scorminspect/internal/scorm/extract"
)

// Analyze produces the normalized description of one package. Fatal
// outcomes are limited to the error taxonomy (unreadable archive,
// missing or malformed manifest); every other defect degrades to a
// warning on the result.
func Analyze(ctx context.Context, data []byte) (*scorm.PackageAnalysis, error) {
	ar, err := scorm.OpenArchive(data)
	if err != nil {
		return nil, err
	}

	me, ok := ar.Manifest()
	if !ok {
		return nil, scorm.ErrManifestMissing
	}
	text, err := me.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scorm.ErrManifestMissing, err)
	}

	// The interpreter and the classifier have no data dependency; run
	// them side by side and join before extraction, which needs both.
	var (
		mf         *scorm.Manifest
		inv        scorm.ContentInventory
		invWarns   []string
		manifested error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mf, manifested = scorm.ParseManifest(text)
		return nil
	})
	g.Go(func() error {
		inv, invWarns = scorm.BuildInventory(gctx, ar)
		return nil
	})
	_ = g.Wait()
	if manifested != nil {
		return nil, manifested
	}

	assessments := extract.Run(extract.Input{
		Archive:     ar,
		Inventory:   inv,
		ManifestXML: mf.RawXML,
	})

	pa := &scorm.PackageAnalysis{
		Format:      "SCORM",
		Version:     mf.Version,
		Title:       mf.Title,
		Metadata:    mf.Metadata,
		Structure:   mf.Structure,
		Resources:   mf.Resources,
		Content:     inv,
		Assessments: assessments,
		Warnings:    invWarns,
	}

	resolveEntryPoints(pa, ar)
	checkStructureRefs(pa)
	return pa, nil
}

// resolveEntryPoints keeps, in resource order, every declared href that
// resolves to an archive entry. The first one is the canonical launch
// target. A dangling href is a warning, never a failure.
func resolveEntryPoints(pa *scorm.PackageAnalysis, ar *scorm.Archive) {
	for _, r := range pa.Resources {
		if r.Href == "" {
			continue
		}
		if _, ok := ar.Lookup(r.Href); ok {
			pa.EntryPoints = append(pa.EntryPoints, r.Href)
			continue
		}
		pa.Warnings = append(pa.Warnings,
			fmt.Sprintf("resource %s declares missing entry point %s", r.Identifier, r.Href))
	}
}

// checkStructureRefs flags items whose identifierref points at no
// declared resource. The tree itself is kept as-is.
func checkStructureRefs(pa *scorm.PackageAnalysis) {
	known := map[string]bool{}
	for _, r := range pa.Resources {
		known[r.Identifier] = true
	}
	var walk func(nodes []scorm.StructureNode)
	walk = func(nodes []scorm.StructureNode) {
		for _, n := range nodes {
			if n.IdentifierRef != "" && !known[n.IdentifierRef] {
				pa.Warnings = append(pa.Warnings,
					fmt.Sprintf("item %s references undeclared resource %s", n.Identifier, n.IdentifierRef))
			}
			walk(n.Children)
		}
	}
	walk(pa.Structure)
}
