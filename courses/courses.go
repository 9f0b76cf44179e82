// Package courses declares the known course snapshots and how each one is resolved.
package courses

import (
	"github.com/alanbriolat/course-archiver"
	"github.com/alanbriolat/course-archiver/episode"
	"github.com/alanbriolat/course-archiver/generic"
	"github.com/alanbriolat/course-archiver/locate"
	"github.com/alanbriolat/course-archiver/resolve"
)

const (
	FMSDLectures = 34
	fmsdBase     = "https://www.cs.toronto.edu/~hehner/FMSD/"
)

var defaultResources = map[string]string{
	"Lecture":    "lecture-videos",
	"Recitation": "recitation-videos",
}

func mechanisms(names ...string) generic.Set[string] {
	return generic.NewSet(names...)
}

// thumbnails300k is the low bitrate archive every course snapshot links from its resource index pages.
func thumbnails300k(dirs map[string]string) course_archiver.Strategy {
	return course_archiver.Strategy{
		Name:       "300k thumbnails",
		Mechanisms: mechanisms(course_archiver.Mechanism300k, course_archiver.MechanismDirect),
		Resolution: resolve.ResourceIndex{
			Dirs:         dirs,
			Thumbnails:   true,
			LocaleMarker: locate.DefaultLocaleMarker,
		},
	}
}

func streaming(name string, resolution course_archiver.Resolution) course_archiver.Strategy {
	return course_archiver.Strategy{
		Name:       name,
		Mechanisms: mechanisms(course_archiver.MechanismYtDlp, course_archiver.MechanismYouTube),
		Resolution: resolution,
	}
}

func c6004y2017() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("6.004-2017", "Computation Structures",
		streaming("session pages", resolve.NewSessionScan("pages/c%[1]d/c%[1]ds2", 21, "Lecture")),
	)
}

func c18065y2018() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("18.065-2018", "Matrix Methods in Data Analysis, Signal Processing, and Machine Learning",
		streaming("lecture directories", resolve.NewFilesystemScan(
			"resources",
			map[string]string{"Lecture": "lecture-"},
			episode.ParsedFromTitle{Rule: episode.LectureRule},
		)),
	)
}

func c1806scy2011() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("18.06sc-2011", "Linear Algebra",
		thumbnails300k(defaultResources),
		streaming("resource pages", resolve.ResourceIndex{
			Dirs:         defaultResources,
			Numbering:    episode.Positional{},
			LocaleMarker: locate.DefaultLocaleMarker,
		}),
	)
}

func c1802scy2010() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("18.02sc-2010", "Multivariable Calculus",
		streaming("resource pages", resolve.ResourceIndex{
			Dirs:         defaultResources,
			Numbering:    episode.ParsedFromTitle{Rule: episode.SessionRule},
			LocaleMarker: locate.DefaultLocaleMarker,
		}),
	)
}

func c6034y2010() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("6.034-2010", "Artificial Intelligence",
		thumbnails300k(defaultResources),
		streaming("video gallery", resolve.Gallery{Dirs: map[string]string{
			"Lecture":         "lecture-videos",
			"Mega-Recitation": "mega-recitation-videos",
		}}),
	)
}

func c6858y2014() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("6.858-2014", "Computer Systems Security",
		thumbnails300k(defaultResources),
		streaming("video gallery", resolve.Gallery{Dirs: map[string]string{"Lecture": "video-lectures"}}),
	)
}

func fmsdHehner() (*course_archiver.Course, error) {
	return course_archiver.NewCourse("fmsd-hehner", "Formal Methods of Software Design",
		course_archiver.Strategy{
			Name:       "file templates",
			Mechanisms: mechanisms(course_archiver.Mechanism300k, course_archiver.MechanismDirect),
			Resolution: resolve.SyntheticTemplate{
				Count: FMSDLectures,
				Templates: map[string]resolve.Template{
					"Lecture":    {Head: fmsdBase + "FMSD", Tail: ".mp4"},
					"Transcript": {Head: fmsdBase + "talk", Tail: ".pdf"},
					"Slide":      {Head: fmsdBase + "show", Tail: ".pdf"},
				},
			},
		},
	)
}

// NewCatalog builds the registry of every known course.
func NewCatalog() (*course_archiver.Catalog, error) {
	builders := []func() (*course_archiver.Course, error){
		c6004y2017,
		c18065y2018,
		c1806scy2011,
		c1802scy2010,
		c6034y2010,
		c6858y2014,
		fmsdHehner,
	}
	catalog, err := course_archiver.NewCatalog()
	if err != nil {
		return nil, err
	}
	for _, build := range builders {
		course, err := build()
		if err != nil {
			return nil, err
		}
		if err := catalog.Add(course); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}
