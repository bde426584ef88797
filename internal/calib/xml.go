package calib

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxRigFileSize bounds calibration files read from disk.
const maxRigFileSize = 1 * 1024 * 1024

type xmlRig struct {
	XMLName xml.Name    `xml:"rig"`
	Cameras []xmlCamera `xml:"camera"`
}

type xmlCamera struct {
	Model xmlModel `xml:"camera_model"`
	TWC   string   `xml:"T_wc"`
}

type xmlModel struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Width  string `xml:"width"`
	Height string `xml:"height"`
	RDF    string `xml:"RDF"`
	Params string `xml:"params"`
}

// ReadXMLRig loads a calibration rig from an XML file.
func ReadXMLRig(path string) (*Rig, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat calibration file: %w", err)
	}
	if info.Size() > maxRigFileSize {
		return nil, fmt.Errorf("calibration file too large: %d bytes (max %d)", info.Size(), maxRigFileSize)
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibration file: %w", err)
	}
	defer f.Close()

	rig, err := DecodeXMLRig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return rig, nil
}

// DecodeXMLRig parses a rig document:
//
//	<rig>
//	  <camera>
//	    <camera_model name="left" type="calibu_fu_fv_u0_v0">
//	      <width> 640 </width> <height> 480 </height>
//	      <RDF> [ 1, 0, 0; 0, 1, 0; 0, 0, 1 ] </RDF>
//	      <params> [ 500; 500; 320; 240 ] </params>
//	    </camera_model>
//	    <T_wc> [ 0; 0; 0; 0; 0; 0 ] </T_wc>
//	  </camera>
//	</rig>
func DecodeXMLRig(r io.Reader) (*Rig, error) {
	var doc xmlRig
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse rig XML: %w", err)
	}

	rig := &Rig{Cameras: make([]CameraModel, 0, len(doc.Cameras))}
	for i, c := range doc.Cameras {
		cam, err := c.toModel()
		if err != nil {
			return nil, fmt.Errorf("camera %d: %w", i, err)
		}
		rig.Cameras = append(rig.Cameras, cam)
	}
	return rig, nil
}

func (c xmlCamera) toModel() (CameraModel, error) {
	m := CameraModel{
		Name: c.Model.Name,
		Type: c.Model.Type,
		Pose: IdentityPose(),
		RDF:  [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	}

	var err error
	if m.Width, err = parseDim(c.Model.Width); err != nil {
		return m, fmt.Errorf("width: %w", err)
	}
	if m.Height, err = parseDim(c.Model.Height); err != nil {
		return m, fmt.Errorf("height: %w", err)
	}

	params, err := parseValues(c.Model.Params)
	if err != nil {
		return m, fmt.Errorf("params: %w", err)
	}
	if m.K, err = intrinsicsFromParams(m.Type, params); err != nil {
		return m, err
	}

	if strings.TrimSpace(c.Model.RDF) != "" {
		rdf, err := parseValues(c.Model.RDF)
		if err != nil {
			return m, fmt.Errorf("RDF: %w", err)
		}
		if len(rdf) != 9 {
			return m, fmt.Errorf("RDF needs 9 values, got %d", len(rdf))
		}
		copy(m.RDF[:], rdf)
	}

	if strings.TrimSpace(c.TWC) != "" {
		v, err := parseValues(c.TWC)
		if err != nil {
			return m, fmt.Errorf("T_wc: %w", err)
		}
		if m.Pose, err = PoseFromValues(v); err != nil {
			return m, fmt.Errorf("T_wc: %w", err)
		}
	}
	return m, nil
}

// intrinsicsFromParams maps the leading model parameters onto pinhole
// intrinsics. Single-focal models store f, u0, v0; all others fu, fv, u0, v0.
// Trailing distortion parameters are ignored.
func intrinsicsFromParams(modelType string, p []float64) (Intrinsics, error) {
	if strings.HasPrefix(modelType, "calibu_f_u0_v0") {
		if len(p) < 3 {
			return Intrinsics{}, fmt.Errorf("model %q needs at least 3 params, got %d", modelType, len(p))
		}
		return Intrinsics{Fx: p[0], Fy: p[0], Cx: p[1], Cy: p[2]}, nil
	}
	if len(p) < 4 {
		return Intrinsics{}, fmt.Errorf("model %q needs at least 4 params, got %d", modelType, len(p))
	}
	return Intrinsics{Fx: p[0], Fy: p[1], Cx: p[2], Cy: p[3]}, nil
}

func parseDim(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative dimension %d", v)
	}
	return v, nil
}

// parseValues flattens a bracketed matrix literal such as "[ 1, 2; 3, 4 ]"
// into row-major values.
func parseValues(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}
