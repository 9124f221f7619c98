package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/sarchlab/y86sim/emu"
	"github.com/sarchlab/y86sim/insts"
	"github.com/sarchlab/y86sim/timing/pipeline"
)

var allOps = []insts.Op{
	insts.OpHALT, insts.OpNOP, insts.OpRRMOVQ, insts.OpIRMOVQ,
	insts.OpRMMOVQ, insts.OpMRMOVQ, insts.OpOPQ, insts.OpJXX,
	insts.OpCALL, insts.OpRET, insts.OpPUSHQ, insts.OpPOPQ,
}

var _ = Describe("Pipeline Stages", func() {
	var (
		regFile *emu.RegFile
		cc      *emu.CondCodes
		memory  *emu.Memory
		regs    *pipeline.Registers
		bus     *pipeline.Bus
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		cc = emu.NewCondCodes()
		memory = emu.NewMemory(0)
		regs = pipeline.NewRegisters()
		bus = pipeline.NewBus()
	})

	Describe("FetchStage", func() {
		var fetchStage *pipeline.FetchStage

		BeforeEach(func() {
			fetchStage = pipeline.NewFetchStage(memory)
		})

		It("should fetch a register instruction", func() {
			Expect(memory.Load(0x10, opq(insts.FnSUB, insts.RCX, insts.RDX))).To(Succeed())

			d := fetchStage.Fetch(0x10)

			Expect(d.Stat).To(Equal(insts.StatusAOK))
			Expect(d.Op).To(Equal(insts.OpOPQ))
			Expect(d.Fn).To(Equal(insts.FnSUB))
			Expect(d.RA).To(Equal(insts.RCX))
			Expect(d.RB).To(Equal(insts.RDX))
			Expect(d.ValP).To(Equal(uint64(0x12)))
		})

		It("should fetch the constant after the register byte", func() {
			Expect(memory.Load(0, irmovq(0x1234, insts.RSI))).To(Succeed())

			d := fetchStage.Fetch(0)

			Expect(d.Op).To(Equal(insts.OpIRMOVQ))
			Expect(d.RB).To(Equal(insts.RSI))
			Expect(d.ValC).To(Equal(uint64(0x1234)))
			Expect(d.ValP).To(Equal(uint64(10)))
		})

		It("should fetch a jump without a register byte", func() {
			Expect(memory.Load(0, jxx(insts.CondE, 0x40))).To(Succeed())

			d := fetchStage.Fetch(0)

			Expect(d.RA).To(Equal(insts.RegNone))
			Expect(d.RB).To(Equal(insts.RegNone))
			Expect(d.ValC).To(Equal(uint64(0x40)))
			Expect(d.ValP).To(Equal(uint64(9)))
		})

		It("should mark halt as HLT", func() {
			d := fetchStage.Fetch(0)

			Expect(d.Op).To(Equal(insts.OpHALT))
			Expect(d.Stat).To(Equal(insts.StatusHLT))
		})

		It("should mark unknown instruction codes as INS", func() {
			Expect(memory.Write8(0, 0xE0)).To(Succeed())

			d := fetchStage.Fetch(0)

			Expect(d.Stat).To(Equal(insts.StatusINS))
		})

		It("should short circuit an address error", func() {
			d := fetchStage.Fetch(emu.DefaultMemorySize)

			Expect(d.Stat).To(Equal(insts.StatusADR))
			Expect(d.Op).To(Equal(insts.OpNOP))
			Expect(d.RA).To(Equal(insts.RegNone))
			Expect(d.RB).To(Equal(insts.RegNone))
			Expect(d.ValC).To(BeZero())
		})

		It("should report ADR when the constant runs past memory", func() {
			addr := uint64(emu.DefaultMemorySize - 4)
			Expect(memory.Load(addr, []byte{0x30, 0xF0, 0, 0})).To(Succeed())

			d := fetchStage.Fetch(addr)

			Expect(d.Stat).To(Equal(insts.StatusADR))
		})

		DescribeTable("PCIncrement",
			func(regIDs, valC bool, want uint64) {
				Expect(pipeline.PCIncrement(0x100, regIDs, valC)).To(Equal(0x100 + want))
			},
			Entry("opcode only", false, false, uint64(1)),
			Entry("register byte", true, false, uint64(2)),
			Entry("constant", false, true, uint64(9)),
			Entry("both", true, true, uint64(10)),
		)

		It("should predict jumps and calls taken", func() {
			Expect(pipeline.PredictPC(insts.OpJXX, 0x80, 0x9)).To(Equal(uint64(0x80)))
			Expect(pipeline.PredictPC(insts.OpCALL, 0x80, 0x9)).To(Equal(uint64(0x80)))
			Expect(pipeline.PredictPC(insts.OpRET, 0x80, 0x9)).To(Equal(uint64(0x9)))
			Expect(pipeline.PredictPC(insts.OpIRMOVQ, 0x80, 0xA)).To(Equal(uint64(0xA)))
		})

		Describe("SelectPC", func() {
			f := pipeline.FFields{PredPC: 0x30}

			It("should use the predicted PC by default", func() {
				m := pipeline.MFields{Op: insts.OpNOP}
				w := pipeline.WFields{Op: insts.OpNOP}
				Expect(pipeline.SelectPC(f, m, w)).To(Equal(uint64(0x30)))
			})

			It("should use the return address of a ret in W", func() {
				m := pipeline.MFields{Op: insts.OpNOP}
				w := pipeline.WFields{Op: insts.OpRET, ValM: 0x50}
				Expect(pipeline.SelectPC(f, m, w)).To(Equal(uint64(0x50)))
			})

			It("should prefer a mispredicted jump in M over a ret in W", func() {
				m := pipeline.MFields{Op: insts.OpJXX, Cnd: false, ValA: 0x70}
				w := pipeline.WFields{Op: insts.OpRET, ValM: 0x50}
				Expect(pipeline.SelectPC(f, m, w)).To(Equal(uint64(0x70)))
			})

			It("should ignore a taken jump in M", func() {
				m := pipeline.MFields{Op: insts.OpJXX, Cnd: true, ValA: 0x70}
				w := pipeline.WFields{Op: insts.OpNOP}
				Expect(pipeline.SelectPC(f, m, w)).To(Equal(uint64(0x30)))
			})
		})

		It("should stage D and F inputs without changing outputs", func() {
			Expect(memory.Load(0, jxx(insts.CondAlways, 0x44))).To(Succeed())

			fetchStage.ClockLow(regs, bus)

			Expect(regs.D.Input().Op).To(Equal(insts.OpJXX))
			Expect(regs.F.Input().PredPC).To(Equal(uint64(0x44)))
			Expect(regs.D.Output().Op).To(Equal(insts.OpNOP))
			Expect(regs.F.Output().PredPC).To(BeZero())

			fetchStage.ClockHigh(regs, pipeline.ControlSignals{})

			Expect(regs.D.Output().Op).To(Equal(insts.OpJXX))
			Expect(regs.F.Output().PredPC).To(Equal(uint64(0x44)))
		})
	})

	Describe("DecodeStage", func() {
		var decodeStage *pipeline.DecodeStage

		BeforeEach(func() {
			decodeStage = pipeline.NewDecodeStage(regFile, false)
		})

		It("should map operand roles per instruction code", func() {
			rA, rB := insts.RCX, insts.RDX

			type roles struct{ srcA, srcB, dstE, dstM insts.Reg }
			want := map[insts.Op]roles{
				insts.OpHALT:   {insts.RegNone, insts.RegNone, insts.RegNone, insts.RegNone},
				insts.OpNOP:    {insts.RegNone, insts.RegNone, insts.RegNone, insts.RegNone},
				insts.OpRRMOVQ: {rA, insts.RegNone, rB, insts.RegNone},
				insts.OpIRMOVQ: {insts.RegNone, insts.RegNone, rB, insts.RegNone},
				insts.OpRMMOVQ: {rA, rB, insts.RegNone, insts.RegNone},
				insts.OpMRMOVQ: {insts.RegNone, rB, insts.RegNone, rA},
				insts.OpOPQ:    {rA, rB, rB, insts.RegNone},
				insts.OpJXX:    {insts.RegNone, insts.RegNone, insts.RegNone, insts.RegNone},
				insts.OpCALL:   {insts.RegNone, insts.RSP, insts.RSP, insts.RegNone},
				insts.OpRET:    {insts.RSP, insts.RSP, insts.RSP, insts.RegNone},
				insts.OpPUSHQ:  {rA, insts.RSP, insts.RSP, insts.RegNone},
				insts.OpPOPQ:   {insts.RSP, insts.RSP, insts.RSP, rA},
			}

			for _, op := range allOps {
				got := roles{
					pipeline.SrcA(op, rA), pipeline.SrcB(op, rB),
					pipeline.DstE(op, rB), pipeline.DstM(op, rA),
				}
				Expect(got).To(Equal(want[op]), "op %s", op)
			}
		})

		It("should default unknown instruction codes to RegNone", func() {
			op := insts.Op(0xC)
			Expect(pipeline.SrcA(op, insts.RAX)).To(Equal(insts.RegNone))
			Expect(pipeline.SrcB(op, insts.RAX)).To(Equal(insts.RegNone))
			Expect(pipeline.DstE(op, insts.RAX)).To(Equal(insts.RegNone))
			Expect(pipeline.DstM(op, insts.RAX)).To(Equal(insts.RegNone))
		})

		Describe("Forward", func() {
			var (
				m pipeline.MFields
				w pipeline.WFields
			)

			BeforeEach(func() {
				m = regs.M.Output()
				w = regs.W.Output()
				regFile.X[insts.RBX] = 1
			})

			It("should read the register file without a match", func() {
				Expect(decodeStage.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(1)))
			})

			It("should prefer the value Execute computes this cycle", func() {
				bus.EDstE, bus.EValE = insts.RBX, 111
				m.DstE, m.ValE = insts.RBX, 222
				w.DstE, w.ValE = insts.RBX, 333

				Expect(decodeStage.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(111)))
			})

			It("should prefer M over W", func() {
				m.DstE, m.ValE = insts.RBX, 222
				w.DstE, w.ValE = insts.RBX, 333

				Expect(decodeStage.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(222)))
			})

			It("should fall back to W", func() {
				w.DstE, w.ValE = insts.RBX, 333

				Expect(decodeStage.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(333)))
			})

			It("should not forward loaded values without the hazard unit", func() {
				m.DstM = insts.RBX
				bus.MValM = 444

				Expect(decodeStage.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(1)))
			})

			It("should forward loaded values with the hazard unit", func() {
				loads := pipeline.NewDecodeStage(regFile, true)
				m.DstM = insts.RBX
				bus.MValM = 444
				w.DstE, w.ValE = insts.RBX, 333

				Expect(loads.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(444)))

				m.DstM = insts.RegNone
				w.DstM, w.ValM = insts.RBX, 555
				Expect(loads.Forward(insts.RBX, bus, m, w)).To(Equal(uint64(555)))
			})

			It("should resolve RegNone to 0 without the register file", func() {
				noRegs := pipeline.NewDecodeStage(nil, true)
				bus.EDstE = insts.RegNone
				bus.EValE = 99

				Expect(noRegs.Forward(insts.RegNone, bus, m, w)).To(BeZero())
			})
		})

		It("should carry valP as operand A of call and jXX", func() {
			d := pipeline.DFields{
				Stat: insts.StatusAOK, Op: insts.OpCALL,
				RA: insts.RegNone, RB: insts.RegNone, ValC: 0x80, ValP: 0x29,
			}
			regFile.X[insts.RSP] = 0x200

			e := decodeStage.Decode(d, bus, regs.M.Output(), regs.W.Output())

			Expect(e.ValA).To(Equal(uint64(0x29)))
			Expect(e.ValB).To(Equal(uint64(0x200)))
			Expect(e.SrcB).To(Equal(insts.RSP))
			Expect(e.DstE).To(Equal(insts.RSP))
		})

		It("should publish srcA and srcB on the bus", func() {
			regs.D.Init(pipeline.DFields{
				Stat: insts.StatusAOK, Op: insts.OpOPQ, RA: insts.RSI, RB: insts.RDI,
			})

			decodeStage.ClockLow(regs, bus)

			Expect(bus.DSrcA).To(Equal(insts.RSI))
			Expect(bus.DSrcB).To(Equal(insts.RDI))
			Expect(regs.E.Input().DstE).To(Equal(insts.RDI))
		})
	})

	Describe("ExecuteStage", func() {
		var executeStage *pipeline.ExecuteStage

		BeforeEach(func() {
			executeStage = pipeline.NewExecuteStage(cc, pipeline.NewHazardUnit(false))
		})

		Describe("ALU", func() {
			It("should add", func() {
				Expect(pipeline.ALU(5, 3, insts.FnADD)).To(Equal(uint64(8)))
			})

			It("should subtract the first operand from the second", func() {
				Expect(pipeline.ALU(5, 3, insts.FnSUB)).To(Equal(uint64(0xFFFFFFFFFFFFFFFE)))
			})

			It("should xor and and", func() {
				Expect(pipeline.ALU(0xF0, 0x0F, insts.FnXOR)).To(Equal(uint64(0xFF)))
				Expect(pipeline.ALU(0xFF, 0x0F, insts.FnAND)).To(Equal(uint64(0x0F)))
			})

			It("should return 0 for unknown functions", func() {
				Expect(pipeline.ALU(1, 2, insts.Fn(7))).To(BeZero())
			})
		})

		It("should select operands per instruction code", func() {
			Expect(pipeline.ALUA(insts.OpOPQ, 1, 2)).To(Equal(uint64(1)))
			Expect(pipeline.ALUA(insts.OpMRMOVQ, 1, 2)).To(Equal(uint64(2)))
			Expect(pipeline.ALUA(insts.OpPUSHQ, 1, 2)).To(Equal(uint64(0xFFFFFFFFFFFFFFF8)))
			Expect(pipeline.ALUA(insts.OpCALL, 1, 2)).To(Equal(uint64(0xFFFFFFFFFFFFFFF8)))
			Expect(pipeline.ALUA(insts.OpCALL, 1, 2) + 0x200).To(Equal(uint64(0x1F8)))
			Expect(pipeline.ALUA(insts.OpRET, 1, 2)).To(Equal(uint64(8)))
			Expect(pipeline.ALUB(insts.OpPOPQ, 3)).To(Equal(uint64(3)))
			Expect(pipeline.ALUB(insts.OpIRMOVQ, 3)).To(BeZero())
			Expect(pipeline.ALUB(insts.OpRRMOVQ, 3)).To(BeZero())
		})

		It("should add for every instruction but OPq", func() {
			Expect(pipeline.ALUFun(insts.OpOPQ, insts.FnXOR)).To(Equal(insts.FnXOR))
			Expect(pipeline.ALUFun(insts.OpRRMOVQ, insts.Fn(insts.CondLE))).To(Equal(insts.FnADD))
		})

		It("should compute flags from the real operation", func() {
			flags := pipeline.Flags(0x7FFFFFFFFFFFFFFF, 0x7FFFFFFFFFFFFFFF,
				0xFFFFFFFFFFFFFFFE, insts.FnADD)
			Expect(flags.OF).To(BeTrue())
			Expect(flags.SF).To(BeTrue())
			Expect(flags.ZF).To(BeFalse())

			flags = pipeline.Flags(5, 5, 0, insts.FnSUB)
			Expect(flags.ZF).To(BeTrue())
			Expect(flags.OF).To(BeFalse())

			flags = pipeline.Flags(0x8000000000000000, 0x8000000000000000, 0, insts.FnXOR)
			Expect(flags.OF).To(BeFalse())
		})

		It("should nullify a conditional move whose condition fails", func() {
			cc.ZF = true
			e := pipeline.EFields{
				Stat: insts.StatusAOK, Op: insts.OpRRMOVQ, Fn: insts.Fn(insts.CondNE),
				ValA: 7, DstE: insts.RBX, DstM: insts.RegNone,
			}

			m, setCC, _ := executeStage.Execute(e)

			Expect(m.Cnd).To(BeFalse())
			Expect(m.DstE).To(Equal(insts.RegNone))
			Expect(setCC).To(BeFalse())
		})

		It("should keep the destination of a taken conditional move", func() {
			cc.ZF = true
			e := pipeline.EFields{
				Stat: insts.StatusAOK, Op: insts.OpRRMOVQ, Fn: insts.Fn(insts.CondE),
				ValA: 7, DstE: insts.RBX,
			}

			m, _, _ := executeStage.Execute(e)

			Expect(m.DstE).To(Equal(insts.RBX))
			Expect(m.ValE).To(Equal(uint64(7)))
		})

		It("should treat nop and halt as never taken", func() {
			Expect(pipeline.Cond(insts.OpNOP, 0, cc)).To(BeFalse())
			Expect(pipeline.Cond(insts.OpHALT, 0, cc)).To(BeFalse())
			Expect(pipeline.Cond(insts.OpMRMOVQ, 0, cc)).To(BeTrue())
		})

		It("should publish valE and dstE and commit flags at clock-high", func() {
			regs.E.Init(pipeline.EFields{
				Stat: insts.StatusAOK, Op: insts.OpOPQ, Fn: insts.FnSUB,
				ValA: 4, ValB: 4, DstE: insts.RDX, DstM: insts.RegNone,
			})
			cc.ZF = false

			executeStage.ClockLow(regs, bus)

			Expect(bus.EValE).To(BeZero())
			Expect(bus.EDstE).To(Equal(insts.RDX))
			Expect(cc.ZF).To(BeFalse())

			executeStage.ClockHigh(regs, pipeline.ControlSignals{})

			Expect(cc.ZF).To(BeTrue())
			Expect(regs.M.Output().DstE).To(Equal(insts.RDX))
		})

		It("should commit every flag through the condition code register", func() {
			regs.E.Init(pipeline.EFields{
				Stat: insts.StatusAOK, Op: insts.OpOPQ, Fn: insts.FnSUB,
				ValA: 5, ValB: 4, DstE: insts.RDX, DstM: insts.RegNone,
			})

			executeStage.ClockLow(regs, bus)
			executeStage.ClockHigh(regs, pipeline.ControlSignals{})

			zf, err := cc.Flag(emu.FlagZF)
			Expect(err).NotTo(HaveOccurred())
			Expect(zf).To(BeFalse())
			sf, err := cc.Flag(emu.FlagSF)
			Expect(err).NotTo(HaveOccurred())
			Expect(sf).To(BeTrue())
			of, err := cc.Flag(emu.FlagOF)
			Expect(err).NotTo(HaveOccurred())
			Expect(of).To(BeFalse())
		})

		It("should not set flags for a failed instruction", func() {
			cc.ZF = false
			regs.E.Init(pipeline.EFields{
				Stat: insts.StatusINS, Op: insts.OpOPQ, Fn: insts.FnSUB,
				DstE: insts.RDX, DstM: insts.RegNone,
			})

			executeStage.ClockLow(regs, bus)
			executeStage.ClockHigh(regs, pipeline.ControlSignals{})

			Expect(cc.ZF).To(BeFalse())
		})
	})

	Describe("MemoryStage", func() {
		var memoryStage *pipeline.MemoryStage

		BeforeEach(func() {
			memoryStage = pipeline.NewMemoryStage(memory)
		})

		It("should pick the address per instruction code", func() {
			Expect(pipeline.Addr(insts.OpRMMOVQ, 1, 2)).To(Equal(uint64(1)))
			Expect(pipeline.Addr(insts.OpCALL, 1, 2)).To(Equal(uint64(1)))
			Expect(pipeline.Addr(insts.OpPOPQ, 1, 2)).To(Equal(uint64(2)))
			Expect(pipeline.Addr(insts.OpRET, 1, 2)).To(Equal(uint64(2)))
			Expect(pipeline.Addr(insts.OpOPQ, 1, 2)).To(BeZero())
		})

		It("should never read and write for the same instruction", func() {
			for _, op := range allOps {
				Expect(pipeline.MemRead(op) && pipeline.MemWrite(op)).To(BeFalse(), "op %s", op)
			}
		})

		It("should load a word", func() {
			Expect(memory.Write64(0x100, 77)).To(Succeed())

			w, store, _ := memoryStage.Access(pipeline.MFields{
				Stat: insts.StatusAOK, Op: insts.OpMRMOVQ, ValE: 0x100,
				DstE: insts.RegNone, DstM: insts.RAX,
			})

			Expect(store).To(BeFalse())
			Expect(w.Stat).To(Equal(insts.StatusAOK))
			Expect(w.ValM).To(Equal(uint64(77)))
		})

		It("should mark an out of range load ADR and leave valM 0", func() {
			w, _, _ := memoryStage.Access(pipeline.MFields{
				Stat: insts.StatusAOK, Op: insts.OpMRMOVQ, ValE: 0x5000,
				DstE: insts.RegNone, DstM: insts.RAX,
			})

			Expect(w.Stat).To(Equal(insts.StatusADR))
			Expect(w.ValM).To(BeZero())
		})

		It("should store only at clock-high", func() {
			regs.M.Init(pipeline.MFields{
				Stat: insts.StatusAOK, Op: insts.OpPUSHQ, ValE: 0x1F8, ValA: 42,
				DstE: insts.RSP, DstM: insts.RegNone,
			})

			memoryStage.ClockLow(regs, bus)
			v, _ := memory.Read64(0x1F8)
			Expect(v).To(BeZero())

			memoryStage.ClockHigh(regs, pipeline.ControlSignals{})
			v, _ = memory.Read64(0x1F8)
			Expect(v).To(Equal(uint64(42)))
			Expect(regs.W.Output().Op).To(Equal(insts.OpPUSHQ))
		})

		It("should reject an out of range store without writing", func() {
			regs.M.Init(pipeline.MFields{
				Stat: insts.StatusAOK, Op: insts.OpRMMOVQ,
				ValE: emu.DefaultMemorySize - 4, ValA: 1,
				DstE: insts.RegNone, DstM: insts.RegNone,
			})

			memoryStage.ClockLow(regs, bus)
			memoryStage.ClockHigh(regs, pipeline.ControlSignals{})

			Expect(bus.MStat).To(Equal(insts.StatusADR))
			Expect(regs.W.Output().Stat).To(Equal(insts.StatusADR))
			b, _ := memory.Read8(emu.DefaultMemorySize - 4)
			Expect(b).To(BeZero())
		})

		It("should not access memory for a failed instruction", func() {
			w, store, _ := memoryStage.Access(pipeline.MFields{
				Stat: insts.StatusADR, Op: insts.OpRMMOVQ, ValE: 0x100, ValA: 9,
				DstE: insts.RegNone, DstM: insts.RegNone,
			})

			Expect(store).To(BeFalse())
			Expect(w.Stat).To(Equal(insts.StatusADR))
		})
	})

	Describe("WritebackStage", func() {
		var writebackStage *pipeline.WritebackStage

		BeforeEach(func() {
			writebackStage = pipeline.NewWritebackStage(regFile)
		})

		It("should write valE and valM", func() {
			writebackStage.Writeback(pipeline.WFields{
				Stat: insts.StatusAOK, Op: insts.OpPOPQ,
				ValE: 0x200, ValM: 5, DstE: insts.RSP, DstM: insts.RBX,
			})

			Expect(regFile.X[insts.RSP]).To(Equal(uint64(0x200)))
			Expect(regFile.X[insts.RBX]).To(Equal(uint64(5)))
		})

		It("should log a write to an invalid register", func() {
			logger, hook := logtest.NewNullLogger()
			writebackStage.SetLogger(logger)

			writebackStage.Writeback(pipeline.WFields{
				Stat: insts.StatusAOK, Op: insts.OpRRMOVQ,
				ValE: 5, DstE: insts.Reg(0x20), DstM: insts.RegNone,
			})

			Expect(regFile.X).To(Equal([insts.NumRegs]uint64{}))
			Expect(hook.LastEntry()).NotTo(BeNil())
			Expect(hook.LastEntry().Level).To(Equal(logrus.ErrorLevel))
			Expect(hook.LastEntry().Message).To(Equal("register write failed"))
			Expect(hook.LastEntry().Data[logrus.ErrorKey]).To(MatchError(emu.ErrInvalidRegister))
		})

		It("should skip RegNone destinations", func() {
			writebackStage.Writeback(pipeline.WFields{
				Stat: insts.StatusAOK, Op: insts.OpRRMOVQ,
				ValE: 5, DstE: insts.RegNone, DstM: insts.RegNone,
			})

			Expect(regFile.X).To(Equal([insts.NumRegs]uint64{}))
		})

		It("should signal done for halt without writing", func() {
			w := pipeline.WFields{
				Stat: insts.StatusHLT, Op: insts.OpHALT,
				ValE: 5, DstE: insts.RAX, DstM: insts.RegNone,
			}
			regs.W.Init(w)

			Expect(writebackStage.ClockLow(regs, bus)).To(BeTrue())
			writebackStage.ClockHigh(regs, pipeline.ControlSignals{})
			Expect(regFile.X[insts.RAX]).To(BeZero())
		})

		It("should signal done for failed instructions", func() {
			Expect(pipeline.Done(pipeline.WFields{Stat: insts.StatusADR, Op: insts.OpMRMOVQ})).To(BeTrue())
			Expect(pipeline.Done(pipeline.WFields{Stat: insts.StatusAOK, Op: insts.OpNOP})).To(BeFalse())
		})
	})
})
