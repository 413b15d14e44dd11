package emotion

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultTaxonomy(t *testing.T) {
	Convey("Given the default taxonomy", t, func() {
		tax := Default()

		Convey("Then it should validate cleanly", func() {
			So(tax.Validate(), ShouldBeNil)
		})

		Convey("Then it should expose seven main emotions in order", func() {
			So(tax.MainNames(), ShouldResemble, []string{
				"happy", "sad", "angry", "surprised", "disgusted", "fearful", "tired",
			})
		})
	})
}

func TestTaxonomyValidation(t *testing.T) {
	Convey("Given a taxonomy with duplicate names", t, func() {
		Convey("When a leaf repeats under two mids", func() {
			tax := Taxonomy{Mains: []Main{
				{Name: "happy", Mids: []Mid{
					{Name: "playful", Leaves: []string{"amused"}},
					{Name: "content", Leaves: []string{"amused"}},
				}},
			}}

			Convey("Then validation should reject it", func() {
				So(tax.Validate(), ShouldWrap, ErrDuplicateName)
			})
		})

		Convey("When a mid name shadows a main name", func() {
			tax := Taxonomy{Mains: []Main{
				{Name: "happy", Mids: []Mid{
					{Name: "happy", Leaves: []string{"amused"}},
				}},
			}}

			Convey("Then validation should reject it", func() {
				So(tax.Validate(), ShouldWrap, ErrDuplicateName)
			})
		})

		Convey("When a name is empty", func() {
			tax := Taxonomy{Mains: []Main{
				{Name: "", Mids: nil},
			}}

			Convey("Then validation should reject it", func() {
				So(tax.Validate(), ShouldWrap, ErrInvalidTaxonomy)
			})
		})
	})
}

func TestResolver(t *testing.T) {
	Convey("Given a resolver over the default taxonomy", t, func() {
		r := NewResolver(Default())

		Convey("When resolving a leaf", func() {
			Convey("Then Parent walks to the main emotion", func() {
				So(r.Parent("lonely"), ShouldEqual, "sad")
				So(r.Parent("terrified"), ShouldEqual, "fearful")
			})

			Convey("And Mid returns the cluster", func() {
				So(r.Mid("lonely"), ShouldEqual, "grief-cluster")
				So(r.Mid("amused"), ShouldEqual, "playful")
			})

			Convey("And Breadcrumb returns the full path", func() {
				So(r.Breadcrumb("lonely"), ShouldResemble, []string{"sad", "grief-cluster", "lonely"})
			})

			Convey("And BreadcrumbString joins it for display", func() {
				So(r.BreadcrumbString("lonely"), ShouldEqual, "sad > grief-cluster > lonely")
				So(r.BreadcrumbString("rage"), ShouldEqual, "angry > rage")
				So(r.BreadcrumbString("happy"), ShouldEqual, "happy")
				So(r.BreadcrumbString("melancholy"), ShouldEqual, "melancholy")
			})
		})

		Convey("When resolving a mid", func() {
			So(r.Parent("grief-cluster"), ShouldEqual, "sad")
			So(r.Mid("grief-cluster"), ShouldEqual, "grief-cluster")
			So(r.Breadcrumb("rage"), ShouldResemble, []string{"angry", "rage"})
		})

		Convey("When resolving a main", func() {
			So(r.Parent("happy"), ShouldEqual, "happy")
			So(r.Mid("happy"), ShouldEqual, "")
			So(r.Breadcrumb("happy"), ShouldResemble, []string{"happy"})
		})

		Convey("When resolving an unknown name", func() {
			Convey("Then it falls back to identity", func() {
				So(r.Parent("melancholy"), ShouldEqual, "melancholy")
				So(r.Mid("melancholy"), ShouldEqual, "")
				So(r.Breadcrumb("melancholy"), ShouldResemble, []string{"melancholy"})
				So(r.Known("melancholy"), ShouldBeFalse)
			})
		})

		Convey("Then Parent is idempotent for every name in the tree", func() {
			for _, main := range Default().Mains {
				for _, mid := range main.Mids {
					for _, leaf := range mid.Leaves {
						p := r.Parent(leaf)
						So(r.Parent(p), ShouldEqual, p)
					}
					p := r.Parent(mid.Name)
					So(r.Parent(p), ShouldEqual, p)
				}
			}
		})
	})
}

func TestColors(t *testing.T) {
	Convey("Given the static palette", t, func() {
		r := NewResolver(Default())

		Convey("Then every name shares its main emotion's color", func() {
			So(r.Color("lonely"), ShouldEqual, r.Color("sad"))
			So(r.Color("grief-cluster"), ShouldEqual, r.Color("sad"))
			So(r.Color("sad"), ShouldNotEqual, r.Color("happy"))
		})

		Convey("Then unknown names get the fallback color", func() {
			So(r.Color("melancholy"), ShouldEqual, FallbackColor)
		})
	})
}
