package lifecycle_test

import (
	"math"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pam/internal/catalog"
	"github.com/san-kum/pam/internal/lifecycle"
	"github.com/san-kum/pam/internal/preset"
	"github.com/san-kum/pam/internal/storage"
)

var _ = Describe("Manager", func() {
	var (
		path    string
		st      *storage.Store
		mgr     *lifecycle.Manager
		cat     *catalog.Catalog
		confirm bool
		prompts []string
	)

	woolSnapshot := func(name string) preset.Snapshot {
		silk, _ := preset.Builtin("Silk")
		s := preset.SnapshotOf(silk)
		s.Name = name
		s.Description = "warm and scratchy"
		s.Friction = 0.45
		return s
	}

	storeBytes := func() []byte {
		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		return data
	}

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "presets.json")
		st = storage.New(path)
		Expect(st.Init()).To(Succeed())

		confirm = true
		prompts = nil
		mgr = lifecycle.NewManager(st, lifecycle.WithConfirmer(lifecycle.ConfirmFunc(func(p string) bool {
			prompts = append(prompts, p)
			return confirm
		})))

		var err error
		cat, err = mgr.InitializeCatalog()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("InitializeCatalog", func() {
		It("seeds a new store with every built-in", func() {
			stored, err := st.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveLen(len(preset.Builtins())))
			Expect(cat.Names()).To(Equal(preset.BuiltinNames()))
			Expect(st.IsNew()).To(BeFalse())
		})

		It("is idempotent", func() {
			before := storeBytes()

			again := storage.New(path)
			Expect(again.Init()).To(Succeed())
			second, err := lifecycle.NewManager(again).InitializeCatalog()
			Expect(err).NotTo(HaveOccurred())

			Expect(second.Map()).To(Equal(cat.Map()))
			Expect(storeBytes()).To(Equal(before))
		})

		It("reseeds a store emptied to {}", func() {
			Expect(os.WriteFile(path, []byte("{}"), 0644)).To(Succeed())
			again := storage.New(path)
			Expect(again.Init()).To(Succeed())

			c, err := lifecycle.NewManager(again).InitializeCatalog()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Len()).To(Equal(len(preset.Builtins())))
			stored, _ := again.Load()
			Expect(stored).To(HaveLen(len(preset.Builtins())))
		})

		It("surfaces a corrupt store as a read error", func() {
			Expect(os.WriteFile(path, []byte("[oops"), 0644)).To(Succeed())
			_, err := mgr.InitializeCatalog()
			var re *storage.ReadError
			Expect(err).To(BeAssignableToTypeOf(re))
		})
	})

	Describe("Save", func() {
		It("persists under the trimmed name", func() {
			p, err := mgr.Save(woolSnapshot("  Wool  "), cat)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal("Wool"))
			Expect(p.Params().Friction).To(Equal(0.45))

			stored, err := st.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).To(HaveKey("Wool"))
			Expect(stored).NotTo(HaveKey("  Wool  "))
			Expect(cat.Has("Wool")).To(BeTrue())
			Expect(prompts).To(ConsistOf("Are you sure you want to save: 'Wool'?"))
		})

		DescribeTable("rejects without touching the store",
			func(name string) {
				before := storeBytes()
				beforeLen := cat.Len()

				_, err := mgr.Save(woolSnapshot(name), cat)
				Expect(err).To(MatchError(lifecycle.ErrValidation))
				Expect(storeBytes()).To(Equal(before))
				Expect(cat.Len()).To(Equal(beforeLen))
				Expect(prompts).To(BeEmpty())
			},
			Entry("empty name", ""),
			Entry("blank name", "   "),
			Entry("reserved marker", "Custom - "),
			Entry("built-in", "Silk"),
			Entry("reset sentinel", "Custom"),
			Entry("default seed", " Default "),
		)

		It("rejects a name already saved by the user", func() {
			_, err := mgr.Save(woolSnapshot("Wool"), cat)
			Expect(err).NotTo(HaveOccurred())

			_, err = mgr.Save(woolSnapshot("Wool"), cat)
			Expect(err).To(MatchError(lifecycle.ErrValidation))
		})

		It("rejects non-finite values", func() {
			s := woolSnapshot("Wool")
			s.Damp = math.Inf(1)
			_, err := mgr.Save(s, cat)
			Expect(err).To(MatchError(lifecycle.ErrValidation))
			Expect(err).To(MatchError(preset.ErrInvalidParam))
		})

		It("does nothing when the user declines", func() {
			confirm = false
			before := storeBytes()
			_, err := mgr.Save(woolSnapshot("Wool"), cat)
			Expect(err).To(MatchError(lifecycle.ErrCanceled))
			Expect(storeBytes()).To(Equal(before))
			Expect(cat.Has("Wool")).To(BeFalse())
		})

		It("keeps the old preset when saving an edit under a new name", func() {
			_, err := mgr.Save(woolSnapshot("Wool"), cat)
			Expect(err).NotTo(HaveOccurred())

			edited := woolSnapshot("Wool Heavy")
			edited.PointMass = 2
			_, err = mgr.Save(edited, cat)
			Expect(err).NotTo(HaveOccurred())

			stored, _ := st.Load()
			Expect(stored).To(HaveKey("Wool"))
			Expect(stored).To(HaveKey("Wool Heavy"))
		})
	})

	Describe("Delete", func() {
		BeforeEach(func() {
			_, err := mgr.Save(woolSnapshot("Wool"), cat)
			Expect(err).NotTo(HaveOccurred())
			prompts = nil
		})

		It("removes a user preset from catalog and store", func() {
			Expect(mgr.Delete(" Wool ", cat)).To(Succeed())
			Expect(cat.Has("Wool")).To(BeFalse())

			stored, err := st.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(stored).NotTo(HaveKey("Wool"))
			Expect(stored).To(HaveLen(len(preset.Builtins())))
			Expect(prompts).To(ConsistOf("Are you sure you want to delete preset 'Wool'?"))
		})

		DescribeTable("refuses protected names",
			func(name string) {
				before := storeBytes()
				err := mgr.Delete(name, cat)
				Expect(err).To(MatchError(lifecycle.ErrValidation))
				Expect(storeBytes()).To(Equal(before))
				Expect(cat.Has(name)).To(Equal(name != "Custom -"))
			},
			Entry("shipped preset", "Concrete"),
			Entry("reset sentinel", "Custom"),
			Entry("default seed", "Default"),
			Entry("reserved marker", "Custom -"),
		)

		It("reports an unknown name without changing anything", func() {
			before := storeBytes()
			err := mgr.Delete("NoSuchPreset", cat)
			Expect(err).To(MatchError(lifecycle.ErrNotFound))
			Expect(storeBytes()).To(Equal(before))
			Expect(prompts).To(BeEmpty())
		})

		It("does nothing when the user declines", func() {
			confirm = false
			err := mgr.Delete("Wool", cat)
			Expect(err).To(MatchError(lifecycle.ErrCanceled))
			Expect(cat.Has("Wool")).To(BeTrue())
			stored, _ := st.Load()
			Expect(stored).To(HaveKey("Wool"))
		})
	})
})
