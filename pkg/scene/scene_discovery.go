package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scene types reported by discovery
const (
	SceneTypeBuiltin = "builtin"
	SceneTypeMarkup  = "markup"
)

const builtinGroup = "Built-in Scenes"

// MarkupExtension is the file extension of scene markup files
const MarkupExtension = ".html"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "markup"
	FilePath    string `json:"filePath"`    // Path to markup file (markup type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// BuiltinScenes lists the scenes available through NewBuiltinScene
func BuiltinScenes() []SceneInfo {
	return []SceneInfo{
		{
			ID:          DefaultSceneID,
			Name:        "Default Scene",
			DisplayName: "Default Scene",
			Description: "Large matte sphere with two small moons",
			Group:       builtinGroup,
			Type:        SceneTypeBuiltin,
		},
		{
			ID:          MirrorsSceneID,
			Name:        "Mirrors",
			DisplayName: "Mirrors",
			Description: "Two fully reflective spheres facing each other",
			Group:       builtinGroup,
			Type:        SceneTypeBuiltin,
		},
		{
			ID:          EmptySceneID,
			Name:        "Empty",
			DisplayName: "Empty",
			Description: "A single light and no spheres",
			Group:       builtinGroup,
			Type:        SceneTypeBuiltin,
		},
	}
}

// FindScenesDir returns the first scenes directory found relative to the working directory, or ""
func FindScenesDir() string {
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListMarkupScenes scans scenesDir for markup scene files
func ListMarkupScenes(scenesDir string) ([]SceneInfo, error) {
	if scenesDir == "" {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(scenesDir, "*"+MarkupExtension))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseMarkupMetadata(filePath)
		if err != nil {
			// Keep going; one unreadable file should not hide the others
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseMarkupMetadata extracts metadata from the leading comment lines of a markup file:
//
//	<!-- Scene: Three Spheres -->
//	<!-- Description: The classic demo -->
func ParseMarkupMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	sceneInfo := SceneInfo{
		ID:          "markup:" + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Markup Scenes",
		Type:        SceneTypeMarkup,
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		// Unreadable files still get a listing from their name
		return sceneInfo, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "<!--") {
			break
		}

		content := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "<!--"), "-->"))
		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "Scene":
			sceneInfo.Name = value
		case "Variant":
			sceneInfo.Variant = value
		case "Description":
			sceneInfo.Description = value
		case "Group":
			if value != "" {
				sceneInfo.Group = value
			}
		}
	}

	if sceneInfo.Variant != "" {
		sceneInfo.DisplayName = fmt.Sprintf("%s - %s", sceneInfo.Name, sceneInfo.Variant)
	} else {
		sceneInfo.DisplayName = sceneInfo.Name
	}

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns both built-in and markup scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	return listScenes(FindScenesDir())
}

func listScenes(scenesDir string) (ScenesResponse, error) {
	var response ScenesResponse

	markupScenes, err := ListMarkupScenes(scenesDir)
	if err != nil {
		return response, fmt.Errorf("failed to list markup scenes: %w", err)
	}

	allScenes := append(BuiltinScenes(), markupScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
